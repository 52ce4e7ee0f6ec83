package ratelimit

import "time"

// LimitConfig allows at most Max requests per client within Window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Policy maps each scope to the limits that apply to it. Every limit of
// every resolved scope must pass for a request to be allowed.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// DefaultPolicy keeps redirects cheap and admin writes and token requests tight.
func DefaultPolicy() *Policy {
	return &Policy{
		Limits: map[Scope][]LimitConfig{
			ScopeGlobal: {
				{Window: time.Minute, Max: 1200},
			},
			ScopeRedirect: {
				{Window: time.Minute, Max: 600},
			},
			ScopeRead: {
				{Window: time.Minute, Max: 120},
			},
			ScopeWrite: {
				{Window: time.Minute, Max: 30},
				{Window: 24 * time.Hour, Max: 1000},
			},
			ScopeAuth: {
				{Window: time.Minute, Max: 10},
				{Window: time.Hour, Max: 50},
			},
		},
	}
}
