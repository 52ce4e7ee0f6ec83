package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/serroba/dynamic-qr/internal/links"
	"github.com/serroba/dynamic-qr/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock advances by one second on every reading.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(time.Second)

	return c.now
}

// microClock advances by one microsecond on every reading.
type microClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *microClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(time.Microsecond)

	return c.now
}

type repoFactory func(t *testing.T, clock store.Clock) links.Repository

func testRepository(t *testing.T, newRepo repoFactory) {
	t.Helper()

	ctx := context.Background()

	t.Run("create then find returns the same record", func(t *testing.T) {
		repo := newRepo(t, newStepClock().Now)

		created, err := repo.Create(ctx, "abc12345", "https://example.com", "https://cdn.test/qr-codes/abc12345.png")
		require.NoError(t, err)
		assert.Equal(t, links.Code("abc12345"), created.Code)
		assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

		found, err := repo.FindByCode(ctx, "abc12345")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", found.DestinationURL)
		assert.Equal(t, "https://cdn.test/qr-codes/abc12345.png", found.QRImageURL)
		assert.True(t, created.CreatedAt.Equal(found.CreatedAt))
	})

	t.Run("create rejects an existing code without overwriting", func(t *testing.T) {
		repo := newRepo(t, newStepClock().Now)

		_, err := repo.Create(ctx, "dup00001", "https://first.example", "qr-1")
		require.NoError(t, err)

		_, err = repo.Create(ctx, "dup00001", "https://second.example", "qr-2")
		require.ErrorIs(t, err, links.ErrDuplicateCode)

		found, err := repo.FindByCode(ctx, "dup00001")
		require.NoError(t, err)
		assert.Equal(t, "https://first.example", found.DestinationURL)
		assert.Equal(t, "qr-1", found.QRImageURL)
	})

	t.Run("find returns ErrNotFound for unknown code", func(t *testing.T) {
		repo := newRepo(t, newStepClock().Now)

		_, err := repo.FindByCode(ctx, "missing1")

		assert.ErrorIs(t, err, links.ErrNotFound)
	})

	t.Run("update changes destination and bumps UpdatedAt only", func(t *testing.T) {
		repo := newRepo(t, newStepClock().Now)

		created, err := repo.Create(ctx, "upd00001", "https://old.example", "qr-upd")
		require.NoError(t, err)

		updated, err := repo.UpdateDestination(ctx, "upd00001", "https://new.example")
		require.NoError(t, err)
		assert.Equal(t, "https://new.example", updated.DestinationURL)
		assert.Equal(t, "qr-upd", updated.QRImageURL)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

		found, err := repo.FindByCode(ctx, "upd00001")
		require.NoError(t, err)
		assert.Equal(t, "https://new.example", found.DestinationURL)
		assert.Equal(t, "qr-upd", found.QRImageURL)
		assert.True(t, created.CreatedAt.Equal(found.CreatedAt))
	})

	t.Run("update returns ErrNotFound for unknown code", func(t *testing.T) {
		repo := newRepo(t, newStepClock().Now)

		_, err := repo.UpdateDestination(ctx, "missing2", "https://new.example")

		assert.ErrorIs(t, err, links.ErrNotFound)
	})

	t.Run("list returns newest first", func(t *testing.T) {
		repo := newRepo(t, newStepClock().Now)

		for _, code := range []links.Code{"first001", "second01", "third001"} {
			_, err := repo.Create(ctx, code, "https://example.com/"+string(code), "qr")
			require.NoError(t, err)
		}

		all, err := repo.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, links.Code("third001"), all[0].Code)
		assert.Equal(t, links.Code("second01"), all[1].Code)
		assert.Equal(t, links.Code("first001"), all[2].Code)
	})

	t.Run("list orders links created within one millisecond by exact time", func(t *testing.T) {
		clock := &microClock{now: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
		repo := newRepo(t, clock.Now)

		for _, code := range []links.Code{"bbbb0001", "aaaa0001", "cccc0001"} {
			_, err := repo.Create(ctx, code, "https://example.com", "qr")
			require.NoError(t, err)
		}

		all, err := repo.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, links.Code("cccc0001"), all[0].Code)
		assert.Equal(t, links.Code("aaaa0001"), all[1].Code)
		assert.Equal(t, links.Code("bbbb0001"), all[2].Code)
	})

	t.Run("list breaks creation time ties by code", func(t *testing.T) {
		frozen := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		repo := newRepo(t, func() time.Time { return frozen })

		for _, code := range []links.Code{"cccc0002", "aaaa0002", "bbbb0002"} {
			_, err := repo.Create(ctx, code, "https://example.com", "qr")
			require.NoError(t, err)
		}

		all, err := repo.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, links.Code("aaaa0002"), all[0].Code)
		assert.Equal(t, links.Code("bbbb0002"), all[1].Code)
		assert.Equal(t, links.Code("cccc0002"), all[2].Code)
	})

	t.Run("list on empty store returns no links", func(t *testing.T) {
		repo := newRepo(t, newStepClock().Now)

		all, err := repo.ListAll(ctx)

		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("concurrent creates of one code yield a single record", func(t *testing.T) {
		repo := newRepo(t, newStepClock().Now)

		const writers = 8

		var (
			wg         sync.WaitGroup
			mu         sync.Mutex
			successes  int
			duplicates int
		)

		for range writers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := repo.Create(ctx, "race0001", "https://example.com", "qr")

				mu.Lock()
				defer mu.Unlock()

				switch {
				case err == nil:
					successes++
				case assert.ErrorIs(t, err, links.ErrDuplicateCode):
					duplicates++
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, writers-1, duplicates)
	})
}
