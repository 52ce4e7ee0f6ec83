package ratelimit

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Scope groups requests that share a set of limits.
type Scope string

const (
	// ScopeGlobal applies to every request.
	ScopeGlobal Scope = "global"
	// ScopeRedirect covers public QR scans.
	ScopeRedirect Scope = "redirect"
	// ScopeRead covers admin reads (GET, HEAD, OPTIONS).
	ScopeRead Scope = "read"
	// ScopeWrite covers admin writes (POST, PUT, PATCH, DELETE).
	ScopeWrite Scope = "write"
	// ScopeAuth covers credential exchange.
	ScopeAuth Scope = "auth"
	// ScopeCustom labels endpoint-specific limits.
	ScopeCustom Scope = "custom"
)

// MetadataKey is the huma.Operation metadata key holding an EndpointConfig.
const MetadataKey = "rateLimit"

// EndpointConfig tunes rate limiting for one operation.
//
// Disabled skips limiting. Non-empty Limits replace the policy limits for the
// endpoint. Otherwise Scope, if set, replaces method-based classification.
type EndpointConfig struct {
	Scope    Scope
	Limits   []LimitConfig
	Disabled bool
}

// ScopeResolver determines which scopes apply to a request.
type ScopeResolver interface {
	Resolve(ctx huma.Context) []Scope
}

// OperationScopeResolver uses the operation's EndpointConfig scope when
// present and falls back to classifying by HTTP method.
type OperationScopeResolver struct{}

// NewOperationScopeResolver creates a new operation-aware scope resolver.
func NewOperationScopeResolver() *OperationScopeResolver {
	return &OperationScopeResolver{}
}

func (r *OperationScopeResolver) Resolve(ctx huma.Context) []Scope {
	if cfg := GetEndpointConfig(ctx.Operation()); cfg != nil && cfg.Scope != "" {
		return []Scope{ScopeGlobal, cfg.Scope}
	}

	switch ctx.Method() {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return []Scope{ScopeGlobal, ScopeRead}
	default:
		return []Scope{ScopeGlobal, ScopeWrite}
	}
}

// GetEndpointConfig extracts the EndpointConfig from operation metadata, if present.
func GetEndpointConfig(op *huma.Operation) *EndpointConfig {
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
