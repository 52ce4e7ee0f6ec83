package container

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/dynamic-qr/internal/store"
	"go.uber.org/zap"
)

// RedisClient owns the shared Redis connection.
type RedisClient struct {
	*redis.Client
}

func (c *RedisClient) Shutdown() error {
	return c.Close()
}

// PostgresPool owns the shared PostgreSQL pool.
type PostgresPool struct {
	*pgxpool.Pool
}

func (p *PostgresPool) Shutdown() error {
	p.Close()

	return nil
}

// SQLiteDB owns the SQLite handle.
type SQLiteDB struct {
	*sql.DB
}

func (d *SQLiteDB) Shutdown() error {
	return d.Close()
}

// LoggerPackage provides the zap logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		return NewLogger(opts.LogFormat, opts.LogLevel)
	})
}

// NewLogger builds a console (development) or JSON (production) logger.
func NewLogger(format, level string) (*zap.Logger, error) {
	var cfg zap.Config

	switch format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console", "":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}

		cfg.Level = lvl
	}

	return cfg.Build()
}

// RedisPackage provides the Redis client. It connects lazily, on first use.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisClient{Client: redis.NewClient(&redis.Options{
			Addr: opts.RedisAddr,
		})}, nil
	})
}

// PostgresPackage provides a migrated PostgreSQL pool.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*PostgresPool, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if err := store.MigratePostgres(opts.DatabaseURL, logger); err != nil {
			return nil, err
		}

		pool, err := pgxpool.New(context.Background(), opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		return &PostgresPool{Pool: pool}, nil
	})
}

// SQLitePackage provides the SQLite handle.
func SQLitePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*SQLiteDB, error) {
		opts := do.MustInvoke[*Options](i)

		db, err := store.OpenSQLite(context.Background(), opts.SQLitePath)
		if err != nil {
			return nil, err
		}

		return &SQLiteDB{DB: db}, nil
	})
}
