package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/dynamic-qr/internal/auth"
	"github.com/serroba/dynamic-qr/internal/blob"
	"github.com/serroba/dynamic-qr/internal/events"
	"github.com/serroba/dynamic-qr/internal/handlers"
	"github.com/serroba/dynamic-qr/internal/health"
	"github.com/serroba/dynamic-qr/internal/links"
	"github.com/serroba/dynamic-qr/internal/middleware"
	"github.com/serroba/dynamic-qr/internal/ratelimit"
	"go.uber.org/zap"
)

const (
	apiTitle   = "Dynamic QR"
	apiVersion = "1.0.0"
)

// HTTPPackage provides the chi router and the huma API with every route
// registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, apiConfig())
		clientIP := middleware.ClientIP(opts.TrustProxyHeaders)
		api.UseMiddleware(middleware.RequestMetadata(api, clientIP))

		if opts.RateLimit != RateLimitOff {
			limiter, err := do.Invoke[*ratelimit.PolicyLimiter](i)
			if err != nil {
				return nil, err
			}

			api.UseMiddleware(middleware.PolicyRateLimiter(
				api, limiter, ratelimit.NewOperationScopeResolver(), clientIP, logger.Named("ratelimit"),
			))
		}

		manager, err := do.Invoke[*links.Manager](i)
		if err != nil {
			return nil, err
		}

		resolver, err := do.Invoke[*links.Resolver](i)
		if err != nil {
			return nil, err
		}

		publisher, err := do.Invoke[events.Publisher](i)
		if err != nil {
			return nil, err
		}

		authenticator, err := do.Invoke[*auth.Authenticator](i)
		if err != nil {
			return nil, err
		}

		blobs, err := do.Invoke[links.BlobStore](i)
		if err != nil {
			return nil, err
		}

		if files, ok := blobs.(*blob.FileStore); ok {
			router.Handle("/qr-codes/*", files.Handler())
		}

		handlerLogger := logger.Named("http")
		handlers.RegisterRoutes(api, handlers.Handlers{
			Links:    handlers.NewLinkHandler(manager, publisher, handlerLogger),
			Redirect: handlers.NewRedirectHandler(resolver, publisher, handlerLogger),
			Auth:     handlers.NewAuthHandler(authenticator, opts.SecureCookies, handlerLogger),
		}, auth.RequireAdmin(api, authenticator, handlerLogger))

		health.RegisterRoutes(api, health.NewHandler(healthChecks(i, opts)...))

		return api, nil
	})
}

func apiConfig() huma.Config {
	config := huma.DefaultConfig(apiTitle, apiVersion)
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {
			Type:   "http",
			Scheme: "basic",
		},
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}

	return config
}

func healthChecks(i *do.Injector, opts *Options) []health.Check {
	checks := []health.Check{
		{Name: "store", Checker: do.MustInvoke[LinkStore](i)},
	}

	if opts.usesRedis() {
		checks = append(checks, health.Check{
			Name:    "redis",
			Checker: health.NewRedisChecker(do.MustInvoke[*RedisClient](i).Client),
		})
	}

	return checks
}
