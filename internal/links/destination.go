package links

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateDestination checks that raw is an absolute URL with a scheme and a
// host, and returns it with surrounding whitespace removed.
func ValidateDestination(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDestination)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidDestination, err)
	}

	if !u.IsAbs() {
		return "", fmt.Errorf("%w: missing scheme", ErrInvalidDestination)
	}

	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidDestination)
	}

	return trimmed, nil
}

// ShortURL builds the payload encoded in every QR image: {base}/q/{code}.
func ShortURL(baseURL string, code Code) string {
	return strings.TrimRight(baseURL, "/") + "/q/" + string(code)
}
