package links

import "context"

// Repository is the authoritative store of short links.
//
// Implementations must enforce code uniqueness themselves: Create returns
// ErrDuplicateCode when the code is taken and never overwrites.
type Repository interface {
	Create(ctx context.Context, code Code, destinationURL, qrImageURL string) (*ShortLink, error)
	// FindByCode returns ErrNotFound if no link has the code.
	FindByCode(ctx context.Context, code Code) (*ShortLink, error)
	// UpdateDestination replaces the destination and refreshes UpdatedAt.
	// Returns ErrNotFound if no link has the code.
	UpdateDestination(ctx context.Context, code Code, destinationURL string) (*ShortLink, error)
	// ListAll returns every link, newest first.
	ListAll(ctx context.Context) ([]*ShortLink, error)
}
