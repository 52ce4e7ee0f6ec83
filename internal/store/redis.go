package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/dynamic-qr/internal/links"
)

// createScript stores the link only if the code is free and indexes it by
// creation time in the same atomic step.
var createScript = redis.NewScript(`
if redis.call('SET', KEYS[1], ARGV[1], 'NX') then
	redis.call('ZADD', KEYS[2], ARGV[2], ARGV[3])
	return 1
end
return 0
`)

const maxUpdateRetries = 10

// RedisStore is a Redis implementation of links.Repository.
type RedisStore struct {
	client   *redis.Client
	prefix   string // "link:" for code -> JSON record
	indexKey string // "links:created" sorted set scored by creation time
	now      Clock
}

type redisLink struct {
	Code           string    `json:"code"`
	DestinationURL string    `json:"destinationUrl"`
	QRImageURL     string    `json:"qrImageUrl"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewRedisStore creates a new Redis-backed link store.
func NewRedisStore(client *redis.Client, opts ...Option) *RedisStore {
	o := newOptions(opts)

	return &RedisStore{
		client:   client,
		prefix:   "link:",
		indexKey: "links:created",
		now:      o.now,
	}
}

func (r *RedisStore) Create(
	ctx context.Context, code links.Code, destinationURL, qrImageURL string,
) (*links.ShortLink, error) {
	now := r.now().UTC()
	link := &links.ShortLink{
		Code:           code,
		DestinationURL: destinationURL,
		QRImageURL:     qrImageURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	payload, err := encodeLink(link)
	if err != nil {
		return nil, err
	}

	created, err := createScript.Run(ctx, r.client,
		[]string{r.key(code), r.indexKey},
		payload, now.UnixMilli(), string(code),
	).Int()
	if err != nil {
		return nil, err
	}

	if created == 0 {
		return nil, links.ErrDuplicateCode
	}

	return link, nil
}

func (r *RedisStore) FindByCode(ctx context.Context, code links.Code) (*links.ShortLink, error) {
	raw, err := r.client.Get(ctx, r.key(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, links.ErrNotFound
		}

		return nil, err
	}

	return decodeLink(raw)
}

// UpdateDestination rewrites the record inside a WATCH transaction so a
// concurrent update is retried rather than half-applied.
func (r *RedisStore) UpdateDestination(
	ctx context.Context, code links.Code, destinationURL string,
) (*links.ShortLink, error) {
	key := r.key(code)

	var updated *links.ShortLink

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return links.ErrNotFound
			}

			return err
		}

		link, err := decodeLink(raw)
		if err != nil {
			return err
		}

		link.DestinationURL = destinationURL
		link.UpdatedAt = r.now().UTC()

		payload, err := encodeLink(link)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)

			return nil
		})
		if err != nil {
			return err
		}

		updated = link

		return nil
	}

	for range maxUpdateRetries {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return updated, nil
	}

	return nil, fmt.Errorf("update %s: %w", code, redis.TxFailedErr)
}

func (r *RedisStore) ListAll(ctx context.Context) ([]*links.ShortLink, error) {
	codes, err := r.client.ZRevRange(ctx, r.indexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	if len(codes) == 0 {
		return []*links.ShortLink{}, nil
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = r.key(links.Code(code))
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	all := make([]*links.ShortLink, 0, len(values))

	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}

		link, err := decodeLink([]byte(raw))
		if err != nil {
			return nil, err
		}

		all = append(all, link)
	}

	// Index scores are milliseconds; order by the exact CreatedAt.
	slices.SortFunc(all, newestFirst)

	return all, nil
}

// Ping checks Redis connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) key(code links.Code) string {
	return r.prefix + string(code)
}

func encodeLink(link *links.ShortLink) ([]byte, error) {
	return json.Marshal(redisLink{
		Code:           string(link.Code),
		DestinationURL: link.DestinationURL,
		QRImageURL:     link.QRImageURL,
		CreatedAt:      link.CreatedAt,
		UpdatedAt:      link.UpdatedAt,
	})
}

func decodeLink(raw []byte) (*links.ShortLink, error) {
	var rec redisLink
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode link: %w", err)
	}

	return &links.ShortLink{
		Code:           links.Code(rec.Code),
		DestinationURL: rec.DestinationURL,
		QRImageURL:     rec.QRImageURL,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}, nil
}

// Compile-time check.
var _ links.Repository = (*RedisStore)(nil)
