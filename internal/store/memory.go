package store

import (
	"context"
	"slices"
	"sync"

	"github.com/serroba/dynamic-qr/internal/links"
)

// MemoryStore is an in-memory implementation of links.Repository.
type MemoryStore struct {
	mu    sync.RWMutex
	links map[links.Code]links.ShortLink
	now   Clock
}

// NewMemoryStore creates a new in-memory link store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := newOptions(opts)

	return &MemoryStore{
		links: make(map[links.Code]links.ShortLink),
		now:   o.now,
	}
}

func (m *MemoryStore) Create(
	_ context.Context, code links.Code, destinationURL, qrImageURL string,
) (*links.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[code]; ok {
		return nil, links.ErrDuplicateCode
	}

	now := m.now().UTC()
	link := links.ShortLink{
		Code:           code,
		DestinationURL: destinationURL,
		QRImageURL:     qrImageURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	m.links[code] = link

	return &link, nil
}

func (m *MemoryStore) FindByCode(_ context.Context, code links.Code) (*links.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[code]
	if !ok {
		return nil, links.ErrNotFound
	}

	return &link, nil
}

func (m *MemoryStore) UpdateDestination(
	_ context.Context, code links.Code, destinationURL string,
) (*links.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[code]
	if !ok {
		return nil, links.ErrNotFound
	}

	link.DestinationURL = destinationURL
	link.UpdatedAt = m.now().UTC()
	m.links[code] = link

	return &link, nil
}

func (m *MemoryStore) ListAll(_ context.Context) ([]*links.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*links.ShortLink, 0, len(m.links))
	for _, link := range m.links {
		all = append(all, &link)
	}

	slices.SortFunc(all, newestFirst)

	return all, nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// newestFirst orders by CreatedAt descending, then by code for a stable listing.
func newestFirst(a, b *links.ShortLink) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}

	if a.Code < b.Code {
		return -1
	}

	if a.Code > b.Code {
		return 1
	}

	return 0
}

// Compile-time check.
var _ links.Repository = (*MemoryStore)(nil)
