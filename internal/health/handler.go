package health

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/dynamic-qr/internal/ratelimit"
	"golang.org/x/sync/errgroup"
)

const (
	statusOK        = "ok"
	statusDegraded  = "degraded"
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"

	// DefaultTimeout bounds each dependency check.
	DefaultTimeout = 2 * time.Second
)

// Checker reports whether a dependency is reachable.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// RedisChecker adapts a redis client to Checker.
type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Check is a named dependency health check.
type Check struct {
	Name    string
	Checker Checker
}

// Handler handles health check operations.
type Handler struct {
	checks  []Check
	timeout time.Duration
}

// NewHandler creates a health handler probing checks in parallel.
func NewHandler(checks ...Check) *Handler {
	return &Handler{checks: checks, timeout: DefaultTimeout}
}

// WithTimeout overrides the per-check timeout.
func (h *Handler) WithTimeout(timeout time.Duration) *Handler {
	h.timeout = timeout

	return h
}

// Response is the response for health check endpoint.
type Response struct {
	Status int
	Body   struct {
		Status string            `example:"ok"                     json:"status"`
		Checks map[string]string `example:"{\"store\":\"healthy\"}" json:"checks"`
	}
}

// Check pings every dependency. Any failure reports degraded with 503.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	results := make([]string, len(h.checks))

	var g errgroup.Group

	for i, c := range h.checks {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()

			results[i] = statusHealthy
			if err := c.Checker.Ping(checkCtx); err != nil {
				results[i] = statusUnhealthy
			}

			return nil
		})
	}

	_ = g.Wait()

	resp := &Response{Status: http.StatusOK}
	resp.Body.Status = statusOK
	resp.Body.Checks = make(map[string]string, len(h.checks))

	for i, c := range h.checks {
		resp.Body.Checks[c.Name] = results[i]
		if results[i] != statusHealthy {
			resp.Body.Status = statusDegraded
			resp.Status = http.StatusServiceUnavailable
		}
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, h.Check)
}
