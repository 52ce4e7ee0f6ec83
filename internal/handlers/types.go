package handlers

import (
	"net/http"
	"time"
)

// LinkBody is the JSON representation of a short link.
type LinkBody struct {
	ShortCode      string    `doc:"Immutable short code"        example:"V1StGXR8"                                  json:"shortCode"`
	ShortURL       string    `doc:"URL encoded in the QR image" example:"https://qr.example/q/V1StGXR8"             json:"shortUrl"`
	DestinationURL string    `doc:"Current redirect target"     example:"https://example.com/landing"               json:"destinationUrl"`
	QRImageURL     string    `doc:"Public URL of the QR PNG"    example:"https://cdn.example/qr-codes/V1StGXR8.png" json:"qrImageUrl"`
	CreatedAt      time.Time `doc:"Creation time"                                                                   json:"createdAt"`
	UpdatedAt      time.Time `doc:"Last destination change"                                                         json:"updatedAt"`
}

// CreateLinkRequest is the request body for creating a dynamic QR link.
type CreateLinkRequest struct {
	Body struct {
		DestinationURL string `doc:"Absolute URL the QR code should redirect to" example:"https://example.com/landing" json:"destinationUrl" required:"false"`
	}
}

// CreateLinkResponse is returned with 201 Created.
type CreateLinkResponse struct {
	Location string `doc:"The short URL" header:"Location"`
	Body     LinkBody
}

// ListLinksResponse lists all links, newest first.
type ListLinksResponse struct {
	Body struct {
		Links []LinkBody `json:"links"`
	}
}

// LinkCodeRequest addresses one link by its short code.
type LinkCodeRequest struct {
	Code string `doc:"The short code" example:"V1StGXR8" path:"code"`
}

// LinkResponse returns a single link.
type LinkResponse struct {
	Body LinkBody
}

// UpdateLinkRequest changes the destination of an existing link.
type UpdateLinkRequest struct {
	Code string `doc:"The short code" example:"V1StGXR8" path:"code"`
	Body struct {
		DestinationURL string `doc:"New absolute destination URL" example:"https://example.com/new" json:"destinationUrl" required:"false"`
	}
}

// RedirectRequest is the public QR scan request.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"V1StGXR8" path:"code"`
}

// RedirectResponse is either a 307 redirect or an HTML error page.
type RedirectResponse struct {
	Status       int
	Location     string `header:"Location"`
	ContentType  string `header:"Content-Type"`
	CacheControl string `header:"Cache-Control"`
	Body         []byte
}

// TokenRequest exchanges admin credentials for a token.
type TokenRequest struct {
	Body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
}

// TokenResponse carries the token in the body and in the auth cookie.
type TokenResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Token     string    `doc:"HS256 bearer token" json:"token"`
		TokenType string    `example:"Bearer"          json:"tokenType"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
}
