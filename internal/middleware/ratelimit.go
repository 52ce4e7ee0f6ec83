package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/dynamic-qr/internal/ratelimit"
	"go.uber.org/zap"
)

// PolicyRateLimiter returns a Huma middleware that applies policy-based rate
// limiting. Operations may opt out or carry their own limits through
// ratelimit.EndpointConfig metadata; all others are limited by the scopes
// the resolver assigns.
func PolicyRateLimiter(
	api huma.API,
	limiter *ratelimit.PolicyLimiter,
	resolver ratelimit.ScopeResolver,
	clientIP ClientIPFunc,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		route := operationPath(ctx)
		cfg := ratelimit.GetEndpointConfig(ctx.Operation())

		if cfg != nil && cfg.Disabled {
			next(ctx)

			return
		}

		var (
			exceeded *ratelimit.LimitExceeded
			err      error
		)

		if cfg != nil && len(cfg.Limits) > 0 {
			exceeded, err = limiter.AllowLimits(ctx.Context(), clientKey(ctx, clientIP), route, cfg.Limits)
		} else {
			exceeded, err = limiter.Allow(ctx.Context(), clientKey(ctx, clientIP), resolver.Resolve(ctx))
		}

		if err != nil {
			logger.Error("rate limit check failed", zap.String("path", route), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error")

			return
		}

		if exceeded != nil {
			rejectRateLimited(api, ctx, exceeded, route, clientIP(ctx), logger)

			return
		}

		next(ctx)
	}
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ctx.URL().Path
}

func rejectRateLimited(
	api huma.API,
	ctx huma.Context,
	exceeded *ratelimit.LimitExceeded,
	route string,
	clientIP string,
	logger *zap.Logger,
) {
	logger.Warn("rate limit exceeded",
		zap.String("path", route),
		zap.String("method", ctx.Method()),
		zap.String("scope", string(exceeded.Scope)),
		zap.Int64("count", exceeded.Count),
		zap.Int64("max", exceeded.Config.Max),
		zap.Duration("window", exceeded.Config.Window),
		zap.String("client_ip", clientIP),
	)

	retryAfter := int64(math.Ceil(exceeded.Config.Window.Seconds()))
	ctx.SetHeader("Retry-After", strconv.FormatInt(retryAfter, 10))

	msg := fmt.Sprintf("rate limit exceeded: %d/%d requests in %s",
		exceeded.Count, exceeded.Config.Max, exceeded.Config.Window)
	_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, msg)
}
