// Package audit records link lifecycle events consumed from the broker.
package audit

import (
	"context"

	"github.com/serroba/dynamic-qr/internal/events"
)

// Store persists audit records.
type Store interface {
	RecordCreated(ctx context.Context, event *events.LinkCreated) error
	RecordUpdated(ctx context.Context, event *events.LinkUpdated) error
	RecordResolved(ctx context.Context, event *events.LinkResolved) error
}
