package store

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/dynamic-qr/internal/ratelimit"
)

// RateLimitRedisStore shares sliding-window counters between server replicas.
// Each key is a sorted set of request IDs scored by arrival time.
type RateLimitRedisStore struct {
	client *redis.Client
	prefix string
	now    Clock
}

// NewRateLimitRedisStore creates a Redis-backed rate limit store.
func NewRateLimitRedisStore(client *redis.Client, opts ...Option) *RateLimitRedisStore {
	o := newOptions(opts)

	return &RateLimitRedisStore{
		client: client,
		prefix: "ratelimit:",
		now:    o.now,
	}
}

func (s *RateLimitRedisStore) Record(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := s.now()
	redisKey := s.prefix + key
	cutoff := strconv.FormatInt(now.Add(-window).UnixMicro(), 10)

	var count *redis.IntCmd

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", cutoff)
		pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMicro()), Member: uuid.NewString()})
		count = pipe.ZCard(ctx, redisKey)
		pipe.Expire(ctx, redisKey, window)

		return nil
	})
	if err != nil {
		return 0, err
	}

	return count.Val(), nil
}

var _ ratelimit.Store = (*RateLimitRedisStore)(nil)
