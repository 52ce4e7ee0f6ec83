package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/serroba/dynamic-qr/internal/ratelimit"
	"github.com/serroba/dynamic-qr/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ err error }

func (f failingStore) Record(context.Context, string, time.Duration) (int64, error) {
	return 0, f.err
}

func testPolicy() *ratelimit.Policy {
	return &ratelimit.Policy{
		Limits: map[ratelimit.Scope][]ratelimit.LimitConfig{
			ratelimit.ScopeGlobal:   {{Window: time.Minute, Max: 100}},
			ratelimit.ScopeWrite:    {{Window: time.Minute, Max: 2}},
			ratelimit.ScopeRedirect: {{Window: time.Minute, Max: 5}},
		},
	}
}

func TestPolicyLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	writeScopes := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}

	t.Run("allows requests under every limit", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), testPolicy())

		for range 2 {
			exceeded, err := limiter.Allow(ctx, "client-a", writeScopes)

			require.NoError(t, err)
			assert.Nil(t, exceeded)
		}
	})

	t.Run("reports the exceeded scope", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), testPolicy())

		for range 2 {
			_, _ = limiter.Allow(ctx, "client-a", writeScopes)
		}

		exceeded, err := limiter.Allow(ctx, "client-a", writeScopes)

		require.NoError(t, err)
		require.NotNil(t, exceeded)
		assert.Equal(t, ratelimit.ScopeWrite, exceeded.Scope)
		assert.Equal(t, int64(3), exceeded.Count)
		assert.Equal(t, int64(2), exceeded.Config.Max)
	})

	t.Run("scopes are counted independently", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), testPolicy())

		for range 3 {
			_, _ = limiter.Allow(ctx, "client-a", writeScopes)
		}

		exceeded, err := limiter.Allow(ctx, "client-a", []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeRedirect})

		require.NoError(t, err)
		assert.Nil(t, exceeded, "redirects must not be throttled by write traffic")
	})

	t.Run("clients are counted independently", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), testPolicy())

		for range 3 {
			_, _ = limiter.Allow(ctx, "client-a", writeScopes)
		}

		exceeded, err := limiter.Allow(ctx, "client-b", writeScopes)

		require.NoError(t, err)
		assert.Nil(t, exceeded)
	})

	t.Run("scopes without limits always pass", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), testPolicy())

		for range 10 {
			exceeded, err := limiter.Allow(ctx, "client-a", []ratelimit.Scope{ratelimit.ScopeAuth})

			require.NoError(t, err)
			assert.Nil(t, exceeded)
		}
	})

	t.Run("propagates store errors", func(t *testing.T) {
		storeErr := errors.New("redis down")
		limiter := ratelimit.NewPolicyLimiter(failingStore{err: storeErr}, testPolicy())

		_, err := limiter.Allow(ctx, "client-a", writeScopes)

		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("nil policy falls back to the default", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), nil)

		exceeded, err := limiter.Allow(ctx, "client-a", writeScopes)

		require.NoError(t, err)
		assert.Nil(t, exceeded)
	})
}

func TestPolicyLimiter_AllowLimits(t *testing.T) {
	ctx := context.Background()
	limits := []ratelimit.LimitConfig{{Window: time.Minute, Max: 1}}

	t.Run("limits per route", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), testPolicy())

		exceeded, err := limiter.AllowLimits(ctx, "client-a", "/auth/token", limits)
		require.NoError(t, err)
		assert.Nil(t, exceeded)

		exceeded, err = limiter.AllowLimits(ctx, "client-a", "/auth/token", limits)
		require.NoError(t, err)
		require.NotNil(t, exceeded)
		assert.Equal(t, ratelimit.ScopeCustom, exceeded.Scope)

		exceeded, err = limiter.AllowLimits(ctx, "client-a", "/other", limits)
		require.NoError(t, err)
		assert.Nil(t, exceeded)
	})
}
