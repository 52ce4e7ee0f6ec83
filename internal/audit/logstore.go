package audit

import (
	"context"

	"github.com/serroba/dynamic-qr/internal/events"
	"go.uber.org/zap"
)

// LogStore writes audit records as structured log lines.
type LogStore struct {
	logger *zap.Logger
}

// NewLogStore creates an audit store backed by logger.
func NewLogStore(logger *zap.Logger) *LogStore {
	return &LogStore{logger: logger.Named("audit")}
}

func (s *LogStore) RecordCreated(_ context.Context, event *events.LinkCreated) error {
	s.logger.Info("link created",
		zap.String("code", event.Code),
		zap.String("destinationUrl", event.DestinationURL),
		zap.String("qrImageUrl", event.QRImageURL),
		zap.Time("createdAt", event.CreatedAt),
		zap.String("clientIp", event.ClientIP),
	)

	return nil
}

func (s *LogStore) RecordUpdated(_ context.Context, event *events.LinkUpdated) error {
	s.logger.Info("link destination updated",
		zap.String("code", event.Code),
		zap.String("destinationUrl", event.DestinationURL),
		zap.Time("updatedAt", event.UpdatedAt),
		zap.String("clientIp", event.ClientIP),
	)

	return nil
}

func (s *LogStore) RecordResolved(_ context.Context, event *events.LinkResolved) error {
	s.logger.Info("link resolved",
		zap.String("code", event.Code),
		zap.String("destinationUrl", event.DestinationURL),
		zap.Time("resolvedAt", event.ResolvedAt),
		zap.String("referrer", event.Referrer),
		zap.String("userAgent", event.UserAgent),
	)

	return nil
}

// Compile-time check.
var _ Store = (*LogStore)(nil)
