package links

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

const (
	// DefaultCodeLength gives a 64^8 (2^48) code space.
	DefaultCodeLength = 8
	// MaxCodeLength bounds codes accepted from the outside world.
	MaxCodeLength = 64
)

// CodeGenerator returns a fresh candidate short code on every call.
type CodeGenerator func() string

// NewCodeGenerator returns a generator of URL-safe codes of the given length
// drawn from the nanoid alphabet (A-Z, a-z, 0-9, '_' and '-').
func NewCodeGenerator(length int) (CodeGenerator, error) {
	gen, err := nanoid.Standard(length)
	if err != nil {
		return nil, fmt.Errorf("code generator: %w", err)
	}

	return gen, nil
}

// ValidCode reports whether s could have been produced by a CodeGenerator.
func ValidCode(s string) bool {
	if s == "" || len(s) > MaxCodeLength {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return false
		}
	}

	return true
}
