package ratelimit

import (
	"context"
	"fmt"
)

// LimitExceeded describes the first limit a request ran into.
type LimitExceeded struct {
	Scope  Scope
	Config LimitConfig
	Count  int64
}

// PolicyLimiter enforces a Policy against a shared counter Store.
type PolicyLimiter struct {
	store  Store
	policy *Policy
}

// NewPolicyLimiter creates a limiter. A nil policy means DefaultPolicy.
func NewPolicyLimiter(store Store, policy *Policy) *PolicyLimiter {
	if policy == nil {
		policy = DefaultPolicy()
	}

	return &PolicyLimiter{
		store:  store,
		policy: policy,
	}
}

// Allow records the request for clientKey under every scope and reports the
// first exceeded limit, or nil if the request may proceed.
func (l *PolicyLimiter) Allow(ctx context.Context, clientKey string, scopes []Scope) (*LimitExceeded, error) {
	for _, scope := range scopes {
		exceeded, err := l.check(ctx, clientKey+":"+string(scope), scope, l.policy.Limits[scope])
		if err != nil || exceeded != nil {
			return exceeded, err
		}
	}

	return nil, nil
}

// AllowLimits applies endpoint-specific limits. Counters are keyed by
// clientKey and route, so every path value of a route shares them.
func (l *PolicyLimiter) AllowLimits(
	ctx context.Context, clientKey, route string, limits []LimitConfig,
) (*LimitExceeded, error) {
	return l.check(ctx, clientKey+":route:"+route, ScopeCustom, limits)
}

func (l *PolicyLimiter) check(
	ctx context.Context, prefix string, scope Scope, limits []LimitConfig,
) (*LimitExceeded, error) {
	for _, limit := range limits {
		key := fmt.Sprintf("%s:%d", prefix, limit.Window.Milliseconds())

		count, err := l.store.Record(ctx, key, limit.Window)
		if err != nil {
			return nil, err
		}

		if count > limit.Max {
			return &LimitExceeded{Scope: scope, Config: limit, Count: count}, nil
		}
	}

	return nil, nil
}
