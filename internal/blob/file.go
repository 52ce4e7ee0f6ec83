// Package blob stores rendered QR images and returns their public URLs.
package blob

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/serroba/dynamic-qr/internal/links"
)

// ErrInvalidKey is returned for keys that would escape the store root.
var ErrInvalidKey = errors.New("invalid blob key")

// FileStore keeps blobs in a local directory that the server exposes over HTTP.
type FileStore struct {
	dir       string
	publicURL string
}

// NewFileStore creates a store rooted at dir. Returned URLs are publicURL + "/" + key.
func NewFileStore(dir, publicURL string) *FileStore {
	return &FileStore{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Put writes data under key, replacing any previous content.
func (s *FileStore) Put(_ context.Context, key string, data []byte) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	target := filepath.Join(s.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp blob: %w", err)
	}

	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		return "", fmt.Errorf("write blob: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close blob: %w", err)
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod blob: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("publish blob: %w", err)
	}

	return s.publicURL + "/" + key, nil
}

// Handler serves stored blobs. Mount it at the root of the key space,
// e.g. "/qr-codes/*" for QR images.
func (s *FileStore) Handler() http.Handler {
	return http.FileServer(http.Dir(s.dir))
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key || strings.HasPrefix(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return nil
}

// Compile-time check.
var _ links.BlobStore = (*FileStore)(nil)
