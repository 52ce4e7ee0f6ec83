package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/dynamic-qr/internal/links"
)

// uniqueViolation is the SQLSTATE raised by primary key and unique index conflicts.
const uniqueViolation = "23505"

// PostgresStore is a PostgreSQL implementation of links.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  Clock
}

// NewPostgresStore creates a new PostgreSQL-backed link store.
func NewPostgresStore(pool *pgxpool.Pool, opts ...Option) *PostgresStore {
	o := newOptions(opts)

	return &PostgresStore{pool: pool, now: o.now}
}

func (p *PostgresStore) Create(
	ctx context.Context, code links.Code, destinationURL, qrImageURL string,
) (*links.ShortLink, error) {
	query := `
		INSERT INTO short_links (short_code, destination_url, qr_image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (short_code) DO NOTHING
	`

	now := p.timestamp()

	tag, err := p.pool.Exec(ctx, query, string(code), destinationURL, qrImageURL, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, links.ErrDuplicateCode
		}

		return nil, err
	}

	if tag.RowsAffected() == 0 {
		return nil, links.ErrDuplicateCode
	}

	return &links.ShortLink{
		Code:           code,
		DestinationURL: destinationURL,
		QRImageURL:     qrImageURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (p *PostgresStore) FindByCode(ctx context.Context, code links.Code) (*links.ShortLink, error) {
	query := `
		SELECT short_code, destination_url, qr_image_url, created_at, updated_at
		FROM short_links
		WHERE short_code = $1
	`

	link, err := scanLink(p.pool.QueryRow(ctx, query, string(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, links.ErrNotFound
		}

		return nil, err
	}

	return link, nil
}

func (p *PostgresStore) UpdateDestination(
	ctx context.Context, code links.Code, destinationURL string,
) (*links.ShortLink, error) {
	query := `
		UPDATE short_links
		SET destination_url = $2, updated_at = $3
		WHERE short_code = $1
		RETURNING short_code, destination_url, qr_image_url, created_at, updated_at
	`

	link, err := scanLink(p.pool.QueryRow(ctx, query, string(code), destinationURL, p.timestamp()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, links.ErrNotFound
		}

		return nil, err
	}

	return link, nil
}

func (p *PostgresStore) ListAll(ctx context.Context) ([]*links.ShortLink, error) {
	query := `
		SELECT short_code, destination_url, qr_image_url, created_at, updated_at
		FROM short_links
		ORDER BY created_at DESC, short_code
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*links.ShortLink, error) {
		return scanLink(row)
	})
}

// Ping checks database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// timestamp matches the microsecond precision of TIMESTAMPTZ.
func (p *PostgresStore) timestamp() time.Time {
	return p.now().UTC().Truncate(time.Microsecond)
}

func scanLink(row pgx.Row) (*links.ShortLink, error) {
	var (
		link links.ShortLink
		code string
	)

	if err := row.Scan(&code, &link.DestinationURL, &link.QRImageURL, &link.CreatedAt, &link.UpdatedAt); err != nil {
		return nil, err
	}

	link.Code = links.Code(code)
	link.CreatedAt = link.CreatedAt.UTC()
	link.UpdatedAt = link.UpdatedAt.UTC()

	return &link, nil
}

// Compile-time check.
var _ links.Repository = (*PostgresStore)(nil)
