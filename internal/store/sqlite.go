package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // sqlite3 dialect
	"github.com/serroba/dynamic-qr/internal/links"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqliteLinksTable = "short_links"

var sqliteLinkColumns = []any{"short_code", "destination_url", "qr_image_url", "created_at", "updated_at"}

// SQLiteStore is a SQLite implementation of links.Repository.
type SQLiteStore struct {
	db  *goqu.Database
	raw *sql.DB
	now Clock
}

type sqliteLinkRow struct {
	ShortCode      string     `db:"short_code"`
	DestinationURL string     `db:"destination_url"`
	QRImageURL     string     `db:"qr_image_url"`
	CreatedAt      sqliteTime `db:"created_at"`
	UpdatedAt      sqliteTime `db:"updated_at"`
}

// OpenSQLite opens the database file at path with WAL journaling and a busy timeout.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

// sqliteDSN adds pragmas for concurrent readers.
// See: https://pkg.go.dev/modernc.org/sqlite#pkg-overview
func sqliteDSN(path string) string {
	if path == ":memory:" {
		return path
	}

	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}

	params := url.Values{}
	params.Set("mode", "rwc")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "synchronous(NORMAL)")
	params.Add("_pragma", "busy_timeout(5000)")

	return path + "?" + params.Encode()
}

// NewSQLiteStore creates a SQLite-backed link store on an open database.
func NewSQLiteStore(db *sql.DB, opts ...Option) *SQLiteStore {
	o := newOptions(opts)

	return &SQLiteStore{
		db:  goqu.New("sqlite3", db),
		raw: db,
		now: o.now,
	}
}

// Migrate creates the links table if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS short_links (
		short_code TEXT PRIMARY KEY,
		destination_url TEXT NOT NULL,
		qr_image_url TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_short_links_created_at ON short_links(created_at);
	`

	_, err := s.raw.ExecContext(ctx, schema)

	return err
}

func (s *SQLiteStore) Create(
	ctx context.Context, code links.Code, destinationURL, qrImageURL string,
) (*links.ShortLink, error) {
	now := s.now().UTC()
	row := sqliteLinkRow{
		ShortCode:      string(code),
		DestinationURL: destinationURL,
		QRImageURL:     qrImageURL,
		CreatedAt:      sqliteTime(now),
		UpdatedAt:      sqliteTime(now),
	}

	_, err := s.db.Insert(sqliteLinksTable).Prepared(true).
		Rows(goqu.Record{
			"short_code":      row.ShortCode,
			"destination_url": row.DestinationURL,
			"qr_image_url":    row.QRImageURL,
			"created_at":      row.CreatedAt,
			"updated_at":      row.UpdatedAt,
		}).
		Executor().ExecContext(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, links.ErrDuplicateCode
		}

		return nil, err
	}

	return row.toDomain(), nil
}

func (s *SQLiteStore) FindByCode(ctx context.Context, code links.Code) (*links.ShortLink, error) {
	return findSQLiteLink(ctx, s.db, code)
}

func (s *SQLiteStore) UpdateDestination(
	ctx context.Context, code links.Code, destinationURL string,
) (*links.ShortLink, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() { _ = tx.Rollback() }()

	res, err := tx.Update(sqliteLinksTable).Prepared(true).
		Set(goqu.Record{
			"destination_url": destinationURL,
			"updated_at":      sqliteTime(s.now().UTC()),
		}).
		Where(goqu.Ex{"short_code": string(code)}).
		Executor().ExecContext(ctx)
	if err != nil {
		return nil, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	if n == 0 {
		return nil, links.ErrNotFound
	}

	link, err := findSQLiteLink(ctx, tx, code)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return link, nil
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]*links.ShortLink, error) {
	var rows []sqliteLinkRow

	err := s.db.From(sqliteLinksTable).
		Select(sqliteLinkColumns...).
		Order(goqu.C("created_at").Desc(), goqu.C("short_code").Asc()).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, err
	}

	all := make([]*links.ShortLink, len(rows))
	for i := range rows {
		all[i] = rows[i].toDomain()
	}

	return all, nil
}

// Ping checks database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.raw.PingContext(ctx)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.raw.Close()
}

type sqliteQuerier interface {
	From(from ...any) *goqu.SelectDataset
}

func findSQLiteLink(ctx context.Context, q sqliteQuerier, code links.Code) (*links.ShortLink, error) {
	var row sqliteLinkRow

	found, err := q.From(sqliteLinksTable).
		Prepared(true).
		Select(sqliteLinkColumns...).
		Where(goqu.Ex{"short_code": string(code)}).
		ScanStructContext(ctx, &row)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, links.ErrNotFound
	}

	return row.toDomain(), nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	code := sqliteErr.Code()

	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func (r *sqliteLinkRow) toDomain() *links.ShortLink {
	return &links.ShortLink{
		Code:           links.Code(r.ShortCode),
		DestinationURL: r.DestinationURL,
		QRImageURL:     r.QRImageURL,
		CreatedAt:      r.CreatedAt.Time(),
		UpdatedAt:      r.UpdatedAt.Time(),
	}
}

// Compile-time check.
var _ links.Repository = (*SQLiteStore)(nil)
