package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/serroba/dynamic-qr/internal/links"
	"github.com/serroba/dynamic-qr/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T, clock store.Clock) *store.SQLiteStore {
	t.Helper()

	ctx := context.Background()

	db, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "links.db"))
	require.NoError(t, err)

	s := store.NewSQLiteStore(db, store.WithClock(clock))
	require.NoError(t, s.Migrate(ctx))

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestSQLiteStore(t *testing.T) {
	testRepository(t, func(t *testing.T, clock store.Clock) links.Repository {
		return newSQLiteStore(t, clock)
	})
}

func TestSQLiteStore_Migrate(t *testing.T) {
	t.Run("is idempotent", func(t *testing.T) {
		s := newSQLiteStore(t, newStepClock().Now)

		err := s.Migrate(context.Background())

		assert.NoError(t, err)
	})
}

func TestSQLiteStore_Ping(t *testing.T) {
	s := newSQLiteStore(t, newStepClock().Now)

	assert.NoError(t, s.Ping(context.Background()))
}
