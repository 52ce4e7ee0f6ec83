package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// ClientIPFunc extracts the originating client address from a request.
type ClientIPFunc func(ctx huma.Context) string

// ClientIP returns a ClientIPFunc. Forwarding headers are client controlled,
// so they are only read when trustProxy is set; otherwise the peer address
// is used.
func ClientIP(trustProxy bool) ClientIPFunc {
	if !trustProxy {
		return remoteIP
	}

	return forwardedIP
}

func forwardedIP(ctx huma.Context) string {
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	return remoteIP(ctx)
}

func remoteIP(ctx huma.Context) string {
	addr := ctx.RemoteAddr()

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return host
}

// clientKey identifies a client for rate limiting by IP and User-Agent.
func clientKey(ctx huma.Context, clientIP ClientIPFunc) string {
	hash := sha256.Sum256([]byte(clientIP(ctx) + "|" + ctx.Header("User-Agent")))

	return hex.EncodeToString(hash[:])
}
