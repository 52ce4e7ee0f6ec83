// Package events defines the lifecycle events emitted for short links.
package events

import "time"

const (
	TopicLinkCreated  = "link.created"
	TopicLinkUpdated  = "link.updated"
	TopicLinkResolved = "link.resolved"
)

// LinkCreated is emitted after a link and its QR image are stored.
type LinkCreated struct {
	Code           string    `json:"code"`
	DestinationURL string    `json:"destinationUrl"`
	QRImageURL     string    `json:"qrImageUrl"`
	CreatedAt      time.Time `json:"createdAt"`
	ClientIP       string    `json:"clientIp,omitempty"`
	UserAgent      string    `json:"userAgent,omitempty"`
}

// LinkUpdated is emitted after a destination change.
type LinkUpdated struct {
	Code           string    `json:"code"`
	DestinationURL string    `json:"destinationUrl"`
	UpdatedAt      time.Time `json:"updatedAt"`
	ClientIP       string    `json:"clientIp,omitempty"`
	UserAgent      string    `json:"userAgent,omitempty"`
}

// LinkResolved is emitted for every successful redirect.
type LinkResolved struct {
	Code           string    `json:"code"`
	DestinationURL string    `json:"destinationUrl"`
	ResolvedAt     time.Time `json:"resolvedAt"`
	ClientIP       string    `json:"clientIp,omitempty"`
	UserAgent      string    `json:"userAgent,omitempty"`
	Referrer       string    `json:"referrer,omitempty"`
}
