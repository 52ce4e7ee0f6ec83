package links

import "context"

// RenderOptions controls the QR image produced for a short URL.
type RenderOptions struct {
	Width      int
	Margin     int
	DarkColor  string
	LightColor string
}

// DefaultRenderOptions returns a 512px black-on-white image with a two module quiet zone.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Width:      512,
		Margin:     2,
		DarkColor:  "#000000",
		LightColor: "#FFFFFF",
	}
}

// Renderer encodes a payload into image bytes. Identical inputs give identical bytes.
type Renderer interface {
	Render(payload string, opts RenderOptions) ([]byte, error)
}

// BlobStore persists bytes under a key and returns a publicly fetchable URL.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
}
