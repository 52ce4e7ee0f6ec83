package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/dynamic-qr/internal/auth"
	"go.uber.org/zap"
)

// AuthHandler issues admin tokens.
type AuthHandler struct {
	authenticator *auth.Authenticator
	secureCookie  bool
	logger        *zap.Logger
}

// NewAuthHandler creates a new auth handler. secureCookie marks the auth
// cookie HTTPS-only.
func NewAuthHandler(authenticator *auth.Authenticator, secureCookie bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		secureCookie:  secureCookie,
		logger:        logger,
	}
}

// IssueToken exchanges admin credentials for a bearer token and cookie.
func (h *AuthHandler) IssueToken(_ context.Context, req *TokenRequest) (*TokenResponse, error) {
	token, err := h.authenticator.Authenticate(auth.Credentials{
		Username: req.Body.Username,
		Password: req.Body.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			h.logger.Warn("rejected admin credentials", zap.String("username", req.Body.Username))

			return nil, huma.Error401Unauthorized("invalid credentials")
		}

		h.logger.Error("failed to issue token", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to issue token")
	}

	resp := &TokenResponse{SetCookie: h.authenticator.Cookie(token, h.secureCookie)}
	resp.Body.Token = token.Value
	resp.Body.TokenType = "Bearer"
	resp.Body.ExpiresAt = token.ExpiresAt

	return resp, nil
}
