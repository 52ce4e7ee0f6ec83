package container

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/samber/do"
	"github.com/serroba/dynamic-qr/internal/audit"
	"github.com/serroba/dynamic-qr/internal/auth"
	"github.com/serroba/dynamic-qr/internal/blob"
	"github.com/serroba/dynamic-qr/internal/events"
	"github.com/serroba/dynamic-qr/internal/links"
	"github.com/serroba/dynamic-qr/internal/messaging"
	"github.com/serroba/dynamic-qr/internal/qr"
	"github.com/serroba/dynamic-qr/internal/ratelimit"
	"github.com/serroba/dynamic-qr/internal/store"
	"go.uber.org/zap"
)

// LinkStore is the repository plus its health check.
type LinkStore interface {
	links.Repository
	Ping(ctx context.Context) error
}

// RepositoryPackage provides the link store selected by Options.Store.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (LinkStore, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Store {
		case StoreMemory:
			return store.NewMemoryStore(), nil
		case StorePostgres:
			pool, err := do.Invoke[*PostgresPool](i)
			if err != nil {
				return nil, err
			}

			return store.NewPostgresStore(pool.Pool), nil
		case StoreRedis:
			client := do.MustInvoke[*RedisClient](i)

			return store.NewRedisStore(client.Client), nil
		case StoreSQLite:
			db, err := do.Invoke[*SQLiteDB](i)
			if err != nil {
				return nil, err
			}

			s := store.NewSQLiteStore(db.DB)
			if err := s.Migrate(context.Background()); err != nil {
				return nil, err
			}

			return s, nil
		default:
			return nil, fmt.Errorf("unknown store %q", opts.Store)
		}
	})
}

// BlobPackage provides the QR image store selected by Options.Blob.
func BlobPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (links.BlobStore, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Blob {
		case BlobFile:
			publicURL := opts.BlobPublicURL
			if publicURL == "" {
				publicURL = opts.PublicBaseURL()
			}

			return blob.NewFileStore(opts.BlobDir, publicURL), nil
		case BlobS3:
			if opts.S3Bucket == "" {
				return nil, fmt.Errorf("s3 blob store requires a bucket")
			}

			var loadOpts []func(*config.LoadOptions) error
			if opts.S3Region != "" {
				loadOpts = append(loadOpts, config.WithRegion(opts.S3Region))
			}

			cfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
			if err != nil {
				return nil, fmt.Errorf("load aws config: %w", err)
			}

			uploader := blob.NewS3Uploader(s3.NewFromConfig(cfg))

			return blob.NewS3Store(uploader, opts.S3Bucket, opts.BlobPublicURL), nil
		default:
			return nil, fmt.Errorf("unknown blob store %q", opts.Blob)
		}
	})
}

// RendererPackage provides the QR renderer.
func RendererPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (links.Renderer, error) {
		return qr.NewRenderer(), nil
	})
}

// LinksPackage provides the lifecycle manager and resolver.
func LinksPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*links.Manager, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		repo, err := do.Invoke[LinkStore](i)
		if err != nil {
			return nil, err
		}

		blobs, err := do.Invoke[links.BlobStore](i)
		if err != nil {
			return nil, err
		}

		generator, err := links.NewCodeGenerator(opts.CodeLength)
		if err != nil {
			return nil, err
		}

		return links.NewManager(repo, generator, do.MustInvoke[links.Renderer](i), blobs, links.ManagerConfig{
			BaseURL: opts.PublicBaseURL(),
			Render: links.RenderOptions{
				Width:      opts.QRWidth,
				Margin:     opts.QRMargin,
				DarkColor:  opts.QRDark,
				LightColor: opts.QRLight,
			},
			MaxAttempts: opts.MaxCreateAttempts,
		}, logger.Named("links")), nil
	})

	do.Provide(i, func(i *do.Injector) (*links.Resolver, error) {
		repo, err := do.Invoke[LinkStore](i)
		if err != nil {
			return nil, err
		}

		return links.NewResolver(repo), nil
	})
}

// AuthPackage provides the admin authenticator. Without credentials every
// admin request is rejected.
func AuthPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*auth.Authenticator, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var creds auth.Credentials

		if opts.AdminCredentials == "" {
			logger.Warn("no admin credentials configured, admin API is disabled")
		} else {
			parsed, err := auth.ParseCredentials(opts.AdminCredentials)
			if err != nil {
				return nil, err
			}

			creds = parsed
		}

		secret := opts.JWTSecret
		if secret == "" {
			generated, err := randomSecret()
			if err != nil {
				return nil, err
			}

			secret = generated

			logger.Warn("no jwt secret configured, tokens will not survive a restart")
		}

		return auth.NewAuthenticator(creds, secret), nil
	})
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// RateLimitPackage provides the policy limiter over the counter store
// selected by Options.RateLimit.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (ratelimit.Store, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.RateLimit {
		case RateLimitMemory:
			return store.NewRateLimitMemoryStore(), nil
		case RateLimitRedis:
			return store.NewRateLimitRedisStore(do.MustInvoke[*RedisClient](i).Client), nil
		default:
			return nil, fmt.Errorf("unknown rate limit store %q", opts.RateLimit)
		}
	})

	do.Provide(i, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		rlStore, err := do.Invoke[ratelimit.Store](i)
		if err != nil {
			return nil, err
		}

		return ratelimit.NewPolicyLimiter(rlStore, ratelimit.DefaultPolicy()), nil
	})
}

// EventBusPackage provides the in-process pub/sub used when Events is memory.
func EventBusPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*gochannel.GoChannel, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		return messaging.NewInMemoryPubSub(messaging.NewZapLoggerAdapter(logger)), nil
	})
}

// PublisherGroupPackage provides the lifecycle event publisher selected by
// Options.Events.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var publisher message.Publisher

		switch opts.Events {
		case EventsMemory:
			publisher = do.MustInvoke[*gochannel.GoChannel](i)
		case EventsRedis:
			client := do.MustInvoke[*RedisClient](i)

			p, err := messaging.NewRedisPublisher(client.Client, messaging.NewZapLoggerAdapter(logger))
			if err != nil {
				return nil, fmt.Errorf("create redis publisher: %w", err)
			}

			publisher = p
		default:
			return nil, fmt.Errorf("events %q have no publisher", opts.Events)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (events.Publisher, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.Events == EventsNone {
			return events.NopPublisher{}, nil
		}

		group, err := do.Invoke[*messaging.PublisherGroup](i)
		if err != nil {
			return nil, err
		}

		return events.NewBrokerPublisher(group.Publisher()), nil
	})
}

// ConsumerGroupPackage provides the audit consumers reading lifecycle events.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var subscriber message.Subscriber

		switch opts.Events {
		case EventsMemory:
			subscriber = do.MustInvoke[*gochannel.GoChannel](i)
		case EventsRedis:
			client := do.MustInvoke[*RedisClient](i)

			s, err := messaging.NewRedisSubscriber(client.Client, AuditConsumerGroup, messaging.NewZapLoggerAdapter(logger))
			if err != nil {
				return nil, fmt.Errorf("create redis subscriber: %w", err)
			}

			subscriber = s
		default:
			return nil, fmt.Errorf("events %q have no subscriber", opts.Events)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(audit.NewConsumers(subscriber, audit.NewLogStore(logger), logger)...)

		return group, nil
	})
}
