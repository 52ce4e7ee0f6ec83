package links_test

import (
	"context"
	"sync"

	"github.com/serroba/dynamic-qr/internal/links"
)

type mockRenderer struct {
	mu       sync.Mutex
	payloads []string
	opts     []links.RenderOptions
	err      error
}

func (m *mockRenderer) Render(payload string, opts links.RenderOptions) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.payloads = append(m.payloads, payload)
	m.opts = append(m.opts, opts)

	if m.err != nil {
		return nil, m.err
	}

	return []byte("png:" + payload), nil
}

func (m *mockRenderer) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.payloads)
}

type mockBlobStore struct {
	mu   sync.Mutex
	keys []string
	data map[string][]byte
	err  error
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{data: make(map[string][]byte)}
}

func (m *mockBlobStore) Put(_ context.Context, key string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys = append(m.keys, key)

	if m.err != nil {
		return "", m.err
	}

	m.data[key] = data

	return "https://cdn.test/" + key, nil
}

func (m *mockBlobStore) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.keys)
}

// mockRepository wraps a real repository and can inject failures on Create.
type mockRepository struct {
	links.Repository

	mu              sync.Mutex
	createCalls     int
	duplicatesFirst int
	createErr       error
	updateCalls     int
}

func (m *mockRepository) Create(
	ctx context.Context, code links.Code, destinationURL, qrImageURL string,
) (*links.ShortLink, error) {
	m.mu.Lock()
	m.createCalls++
	call := m.createCalls
	m.mu.Unlock()

	if call <= m.duplicatesFirst {
		return nil, links.ErrDuplicateCode
	}

	if m.createErr != nil {
		return nil, m.createErr
	}

	return m.Repository.Create(ctx, code, destinationURL, qrImageURL)
}

func (m *mockRepository) UpdateDestination(
	ctx context.Context, code links.Code, destinationURL string,
) (*links.ShortLink, error) {
	m.mu.Lock()
	m.updateCalls++
	m.mu.Unlock()

	return m.Repository.UpdateDestination(ctx, code, destinationURL)
}

// sequenceGenerator hands out the given codes in order, then repeats the last.
func sequenceGenerator(codes ...string) links.CodeGenerator {
	var (
		mu sync.Mutex
		i  int
	)

	return func() string {
		mu.Lock()
		defer mu.Unlock()

		code := codes[min(i, len(codes)-1)]
		i++

		return code
	}
}
