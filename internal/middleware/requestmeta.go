package middleware

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

// RequestMeta describes who made a request. It is attached to resolve events.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
}

type requestMetaKey struct{}

// ContextWithRequestMeta returns a copy of ctx carrying meta.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext returns the metadata stored by RequestMetadata, if any.
func RequestMetaFromContext(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta)

	return meta, ok
}

// RequestMetadata is a Huma middleware that stores client IP, user-agent and
// referrer in the request context.
func RequestMetadata(_ huma.API, clientIP ClientIPFunc) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := RequestMeta{
			ClientIP:  clientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		next(huma.WithContext(ctx, ContextWithRequestMeta(ctx.Context(), meta)))
	}
}
