package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName carries the admin token for browser clients.
	CookieName = "auth_token"
	// DefaultTokenTTL is the lifetime of issued admin tokens.
	DefaultTokenTTL = 30 * 24 * time.Hour

	issuer = "dynamic-qr"
)

// Authorizer is the capability check guarding administrative operations.
type Authorizer interface {
	IsAuthorizedAdmin(ctx huma.Context) bool
}

// Claims are the JWT claims of an admin token.
type Claims struct {
	jwt.RegisteredClaims
}

// Token is a signed admin token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Authenticator accepts HTTP basic admin credentials or an HS256 token sent
// as a bearer header or in the auth cookie.
type Authenticator struct {
	credentials Credentials
	secret      []byte
	ttl         time.Duration
	now         func() time.Time
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithTokenTTL overrides DefaultTokenTTL.
func WithTokenTTL(ttl time.Duration) Option {
	return func(a *Authenticator) {
		a.ttl = ttl
	}
}

// WithClock overrides the time source used for issuing and checking tokens.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		a.now = now
	}
}

// NewAuthenticator creates an authenticator for the given admin and signing secret.
func NewAuthenticator(credentials Credentials, secret string, opts ...Option) *Authenticator {
	a := &Authenticator{
		credentials: credentials,
		secret:      []byte(secret),
		ttl:         DefaultTokenTTL,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Authenticate exchanges admin credentials for a signed token.
func (a *Authenticator) Authenticate(creds Credentials) (*Token, error) {
	if !a.credentials.Matches(creds) {
		return nil, ErrUnauthorized
	}

	return a.IssueToken(creds.Username)
}

// IssueToken signs a token for subject.
func (a *Authenticator) IssueToken(subject string) (*Token, error) {
	now := a.now()
	expiresAt := now.Add(a.ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Token{Value: signed, ExpiresAt: expiresAt}, nil
}

// VerifyToken checks signature, issuer and expiry.
func (a *Authenticator) VerifyToken(value string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(value, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}

		return a.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject != a.credentials.Username {
		return nil, ErrUnauthorized
	}

	return claims, nil
}

// IsAuthorizedAdmin tries the bearer token, then the cookie, then basic auth.
func (a *Authenticator) IsAuthorizedAdmin(ctx huma.Context) bool {
	if a.credentials.IsZero() {
		return false
	}

	authorization := ctx.Header("Authorization")

	if token, ok := strings.CutPrefix(authorization, "Bearer "); ok {
		_, err := a.VerifyToken(strings.TrimSpace(token))

		return err == nil
	}

	if token := cookieValue(ctx.Header("Cookie"), CookieName); token != "" {
		if _, err := a.VerifyToken(token); err == nil {
			return true
		}
	}

	if creds, ok := parseBasicAuth(authorization); ok {
		return a.credentials.Matches(creds)
	}

	return false
}

// Cookie wraps token in the auth cookie.
func (a *Authenticator) Cookie(token *Token, secure bool) http.Cookie {
	return http.Cookie{
		Name:     CookieName,
		Value:    token.Value,
		Path:     "/",
		Expires:  token.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func cookieValue(header, name string) string {
	if header == "" {
		return ""
	}

	cookies, err := http.ParseCookie(header)
	if err != nil {
		return ""
	}

	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}

	return ""
}

func parseBasicAuth(header string) (Credentials, bool) {
	const prefix = "Basic "

	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return Credentials{}, false
	}

	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return Credentials{}, false
	}

	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return Credentials{}, false
	}

	return Credentials{Username: username, Password: password}, true
}

// Compile-time check.
var _ Authorizer = (*Authenticator)(nil)
