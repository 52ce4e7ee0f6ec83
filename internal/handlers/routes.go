package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/dynamic-qr/internal/ratelimit"
)

// Handlers bundles the HTTP handlers registered by RegisterRoutes.
type Handlers struct {
	Links    *LinkHandler
	Redirect *RedirectHandler
	Auth     *AuthHandler
}

// RegisterRoutes registers the admin API, the token endpoint and the public
// redirect. requireAdmin guards every /links operation.
func RegisterRoutes(api huma.API, h Handlers, requireAdmin func(huma.Context, func(huma.Context))) {
	admin := huma.Middlewares{requireAdmin}
	security := []map[string][]string{{"basicAuth": {}}, {"bearerAuth": {}}}

	huma.Register(api, huma.Operation{
		OperationID:   "create-link",
		Method:        http.MethodPost,
		Path:          "/links",
		Summary:       "Create dynamic QR link",
		Description:   "Mints a short code, renders its QR image and stores the destination.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
		Security:      security,
		Middlewares:   admin,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeWrite},
		},
	}, h.Links.CreateLink)

	huma.Register(api, huma.Operation{
		OperationID: "list-links",
		Method:      http.MethodGet,
		Path:        "/links",
		Summary:     "List links",
		Description: "Lists every link, newest first.",
		Tags:        []string{"Links"},
		Security:    security,
		Middlewares: admin,
	}, h.Links.ListLinks)

	huma.Register(api, huma.Operation{
		OperationID: "get-link",
		Method:      http.MethodGet,
		Path:        "/links/{code}",
		Summary:     "Get link",
		Tags:        []string{"Links"},
		Security:    security,
		Middlewares: admin,
	}, h.Links.GetLink)

	huma.Register(api, huma.Operation{
		OperationID: "update-link",
		Method:      http.MethodPatch,
		Path:        "/links/{code}",
		Summary:     "Change link destination",
		Description: "Points an existing short code at a new destination. The QR image is unchanged.",
		Tags:        []string{"Links"},
		Security:    security,
		Middlewares: admin,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeWrite},
		},
	}, h.Links.UpdateLink)

	huma.Register(api, huma.Operation{
		OperationID: "issue-token",
		Method:      http.MethodPost,
		Path:        "/auth/token",
		Summary:     "Issue admin token",
		Tags:        []string{"Auth"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeAuth},
		},
	}, h.Auth.IssueToken)

	huma.Register(api, huma.Operation{
		OperationID: "resolve-link",
		Method:      http.MethodGet,
		Path:        "/q/{code}",
		Summary:     "Redirect to destination",
		Description: "Answers a QR scan with a temporary redirect to the current destination.",
		Tags:        []string{"Redirect"},
		Responses: map[string]*huma.Response{
			"307": {Description: "Redirect to the current destination"},
			"404": {Description: "Unknown short code", Content: map[string]*huma.MediaType{"text/html": {}}},
		},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeRedirect},
		},
	}, h.Redirect.Redirect)
}
