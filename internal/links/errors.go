package links

import "errors"

var (
	ErrInvalidDestination = errors.New("invalid destination url")
	ErrDuplicateCode      = errors.New("short code already exists")
	ErrCodeSpaceExhausted = errors.New("could not mint a unique short code")
	ErrNotFound           = errors.New("short link not found")
	ErrBlobStore          = errors.New("blob store failure")
	ErrRender             = errors.New("qr render failure")
)
