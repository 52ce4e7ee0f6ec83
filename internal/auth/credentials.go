// Package auth decides whether a request comes from an authenticated administrator.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUnauthorized is returned when credentials or tokens are rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned for a malformed "user:pass" setting.
	ErrInvalidCredentials = errors.New("invalid credentials format")
)

// Credentials identify the administrator.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ParseCredentials parses "user:pass". The password may contain colons.
func ParseCredentials(s string) (Credentials, error) {
	username, password, ok := strings.Cut(s, ":")
	if !ok || username == "" || password == "" {
		return Credentials{}, fmt.Errorf("%w: expected user:pass", ErrInvalidCredentials)
	}

	return Credentials{Username: username, Password: password}, nil
}

// IsZero reports whether no credentials are configured.
func (c Credentials) IsZero() bool {
	return c.Username == "" && c.Password == ""
}

// Matches reports whether other carries the configured credentials. A
// configured password in bcrypt form ("$2a$...") is checked as a hash,
// anything else is compared in constant time.
func (c Credentials) Matches(other Credentials) bool {
	if c.IsZero() {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(c.Username), []byte(other.Username)) == 1

	return passwordMatches(c.Password, other.Password) && userOK
}

func passwordMatches(configured, given string) bool {
	if isBcryptHash(configured) {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(given)) == nil
	}

	return subtle.ConstantTimeCompare([]byte(configured), []byte(given)) == 1
}

func isBcryptHash(s string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}

	return false
}
