package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/dynamic-qr/internal/ratelimit"
)

// RateLimitMemoryStore keeps sliding-window request timestamps in process memory.
type RateLimitMemoryStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	now      Clock
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore(opts ...Option) *RateLimitMemoryStore {
	o := newOptions(opts)

	return &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
		now:      o.now,
	}
}

// Record counts the current request against key and returns the number of
// requests seen inside window, including this one.
func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)

	kept := s.requests[key][:0]
	for _, ts := range s.requests[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	kept = append(kept, now)
	s.requests[key] = kept

	return int64(len(kept)), nil
}

var _ ratelimit.Store = (*RateLimitMemoryStore)(nil)
