package ratelimit

import (
	"context"
	"time"
)

// Store keeps sliding-window request counters.
type Store interface {
	// Record counts one request against key and returns how many requests
	// fall inside window, including this one. Expired entries are pruned.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
