package links

import "time"

// Code is the immutable short identifier embedded in a QR payload.
type Code string

// ShortLink maps a short code to its current destination.
type ShortLink struct {
	Code           Code
	DestinationURL string
	QRImageURL     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Created is the result of a successful create workflow.
type Created struct {
	Link     *ShortLink
	ShortURL string
}
