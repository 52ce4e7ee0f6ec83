package links

import "context"

// Resolver is the read-only redirect path. It only ever reads the repository.
type Resolver struct {
	repo Repository
}

// NewResolver creates a resolver backed by repo.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the link for code. Malformed codes are reported as
// ErrNotFound without a lookup.
func (r *Resolver) Resolve(ctx context.Context, code Code) (*ShortLink, error) {
	if !ValidCode(string(code)) {
		return nil, ErrNotFound
	}

	return r.repo.FindByCode(ctx, code)
}
