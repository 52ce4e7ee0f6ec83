// Command consumer records link lifecycle events published to Redis streams.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do"
	"github.com/serroba/dynamic-qr/internal/container"
	"github.com/serroba/dynamic-qr/internal/messaging"
	"go.uber.org/zap"
)

func optionsFromEnv() *container.Options {
	return &container.Options{
		RedisAddr: envOr("REDIS_ADDR", "localhost:6379"),
		LogFormat: envOr("LOG_FORMAT", "console"),
		LogLevel:  envOr("LOG_LEVEL", "info"),
		Events:    container.EventsRedis,
	}
}

func main() {
	opts := optionsFromEnv()

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, err := do.Invoke[*messaging.ConsumerGroup](injector)
	if err != nil {
		logger.Fatal("failed to build consumer group", zap.Error(err))
	}

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	logger.Info("audit consumer running",
		zap.String("redisAddr", opts.RedisAddr),
		zap.String("consumerGroup", container.AuditConsumerGroup),
	)

	<-ctx.Done()

	logger.Info("shutting down")

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return fallback
}
