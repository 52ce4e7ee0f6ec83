package auth

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// RequireAdmin returns a Huma middleware that rejects requests that are not
// from an authenticated administrator with 401.
func RequireAdmin(
	api huma.API,
	authorizer Authorizer,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if authorizer.IsAuthorizedAdmin(ctx) {
			next(ctx)

			return
		}

		logger.Debug("admin authorization failed",
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.URL().Path),
		)

		ctx.SetHeader("WWW-Authenticate", `Basic realm="admin", charset="UTF-8"`)
		_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "unauthorized")
	}
}
