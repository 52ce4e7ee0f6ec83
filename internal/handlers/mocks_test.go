package handlers_test

import (
	"context"
	"errors"
	"sync"

	"github.com/serroba/dynamic-qr/internal/events"
	"github.com/serroba/dynamic-qr/internal/links"
)

var errPublish = errors.New("publish error")

type recordingPublisher struct {
	mu       sync.Mutex
	created  []*events.LinkCreated
	updated  []*events.LinkUpdated
	resolved []*events.LinkResolved
	err      error
}

func (p *recordingPublisher) LinkCreated(_ context.Context, e *events.LinkCreated) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.created = append(p.created, e)

	return p.err
}

func (p *recordingPublisher) LinkUpdated(_ context.Context, e *events.LinkUpdated) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.updated = append(p.updated, e)

	return p.err
}

func (p *recordingPublisher) LinkResolved(_ context.Context, e *events.LinkResolved) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resolved = append(p.resolved, e)

	return p.err
}

func (p *recordingPublisher) resolvedEvents() []*events.LinkResolved {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]*events.LinkResolved(nil), p.resolved...)
}

type stubManager struct {
	created *links.Created
	link    *links.ShortLink
	all     []*links.ShortLink
	err     error
	gotDest string
	gotCode links.Code
}

func (m *stubManager) Create(_ context.Context, destination string) (*links.Created, error) {
	m.gotDest = destination

	return m.created, m.err
}

func (m *stubManager) Update(_ context.Context, code links.Code, destination string) (*links.ShortLink, error) {
	m.gotCode = code
	m.gotDest = destination

	return m.link, m.err
}

func (m *stubManager) Get(_ context.Context, code links.Code) (*links.ShortLink, error) {
	m.gotCode = code

	return m.link, m.err
}

func (m *stubManager) List(context.Context) ([]*links.ShortLink, error) {
	return m.all, m.err
}

func (m *stubManager) ShortURL(code links.Code) string {
	return links.ShortURL("https://qr.test", code)
}

type stubResolver struct {
	link *links.ShortLink
	err  error
}

func (r stubResolver) Resolve(context.Context, links.Code) (*links.ShortLink, error) {
	return r.link, r.err
}
