package links

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds the duplicate-code retry loop of Create.
const DefaultMaxAttempts = 5

// ManagerConfig holds the deployment-specific settings of a Manager.
type ManagerConfig struct {
	BaseURL     string
	Render      RenderOptions
	MaxAttempts int
}

// Manager orchestrates the create and update workflows of dynamic QR links.
type Manager struct {
	repo         Repository
	generateCode CodeGenerator
	renderer     Renderer
	blobs        BlobStore
	cfg          ManagerConfig
	logger       *zap.Logger
}

// NewManager creates a lifecycle manager. A non-positive MaxAttempts falls
// back to DefaultMaxAttempts.
func NewManager(
	repo Repository,
	generator CodeGenerator,
	renderer Renderer,
	blobs BlobStore,
	cfg ManagerConfig,
	logger *zap.Logger,
) *Manager {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	return &Manager{
		repo:         repo,
		generateCode: generator,
		renderer:     renderer,
		blobs:        blobs,
		cfg:          cfg,
		logger:       logger,
	}
}

// BlobKey is the object key under which the QR image of code is stored.
func BlobKey(code Code) string {
	return "qr-codes/" + string(code) + ".png"
}

// ShortURL returns the redirect URL for code on this deployment.
func (m *Manager) ShortURL(code Code) string {
	return ShortURL(m.cfg.BaseURL, code)
}

// Create mints a code, renders and uploads its QR image, then persists the
// link. A duplicate code restarts the sequence with a fresh code.
func (m *Manager) Create(ctx context.Context, destination string) (*Created, error) {
	dest, err := ValidateDestination(destination)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= m.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		link, err := m.attemptCreate(ctx, Code(m.generateCode()), dest)
		if err == nil {
			return &Created{Link: link, ShortURL: m.ShortURL(link.Code)}, nil
		}

		if !errors.Is(err, ErrDuplicateCode) {
			return nil, err
		}

		m.logger.Info("short code collision, retrying",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", m.cfg.MaxAttempts),
		)
	}

	return nil, ErrCodeSpaceExhausted
}

func (m *Manager) attemptCreate(ctx context.Context, code Code, dest string) (*ShortLink, error) {
	shortURL := m.ShortURL(code)

	image, err := m.renderer.Render(shortURL, m.cfg.Render)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	key := BlobKey(code)

	qrImageURL, err := m.blobs.Put(ctx, key, image)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBlobStore, err)
	}

	link, err := m.repo.Create(ctx, code, dest, qrImageURL)
	if err != nil {
		if !errors.Is(err, ErrDuplicateCode) {
			m.logger.Warn("link not persisted, qr image orphaned",
				zap.String("code", string(code)),
				zap.String("blobKey", key),
				zap.Error(err),
			)
		}

		return nil, err
	}

	return link, nil
}

// Update points code at a new destination. The code and QR image are untouched.
func (m *Manager) Update(ctx context.Context, code Code, destination string) (*ShortLink, error) {
	dest, err := ValidateDestination(destination)
	if err != nil {
		return nil, err
	}

	if !ValidCode(string(code)) {
		return nil, ErrNotFound
	}

	return m.repo.UpdateDestination(ctx, code, dest)
}

// Get returns a single link for administrative display.
func (m *Manager) Get(ctx context.Context, code Code) (*ShortLink, error) {
	if !ValidCode(string(code)) {
		return nil, ErrNotFound
	}

	return m.repo.FindByCode(ctx, code)
}

// List returns every link, newest first.
func (m *Manager) List(ctx context.Context) ([]*ShortLink, error) {
	return m.repo.ListAll(ctx)
}
