// Package qr renders short URLs as PNG QR images.
package qr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"github.com/serroba/dynamic-qr/internal/links"
	qrcode "github.com/skip2/go-qrcode"
)

var errBadColor = errors.New("invalid hex color")

// Renderer encodes text into a square PNG QR image.
// Output is a pure function of the payload and options.
type Renderer struct {
	level qrcode.RecoveryLevel
}

// NewRenderer creates a renderer using medium (~15%) error correction.
func NewRenderer() *Renderer {
	return &Renderer{level: qrcode.Medium}
}

// Render draws payload with a quiet zone of opts.Margin modules. The image is
// opts.Width pixels wide, or one pixel per module if the matrix is wider.
func (r *Renderer) Render(payload string, opts links.RenderOptions) ([]byte, error) {
	if opts.Width <= 0 {
		return nil, fmt.Errorf("width must be positive, got %d", opts.Width)
	}

	if opts.Margin < 0 {
		return nil, fmt.Errorf("margin must not be negative, got %d", opts.Margin)
	}

	dark, err := parseHexColor(opts.DarkColor)
	if err != nil {
		return nil, err
	}

	light, err := parseHexColor(opts.LightColor)
	if err != nil {
		return nil, err
	}

	code, err := qrcode.New(payload, r.level)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	code.DisableBorder = true
	bitmap := code.Bitmap()

	modules := len(bitmap) + 2*opts.Margin
	size := max(opts.Width, modules)

	img := image.NewPaletted(image.Rect(0, 0, size, size), color.Palette{light, dark})

	for y := range size {
		row := y*modules/size - opts.Margin

		for x := range size {
			col := x*modules/size - opts.Margin

			if row >= 0 && row < len(bitmap) && col >= 0 && col < len(bitmap) && bitmap[row][col] {
				img.SetColorIndex(x, y, 1)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return buf.Bytes(), nil
}

// parseHexColor accepts #RGB, #RRGGBB and #RRGGBBAA.
func parseHexColor(s string) (color.NRGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.NRGBA{}, fmt.Errorf("%w: %q", errBadColor, s)
	}

	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}

	if len(hex) == 6 {
		hex += "ff"
	}

	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", errBadColor, s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", errBadColor, s)
	}

	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Compile-time check.
var _ links.Renderer = (*Renderer)(nil)
