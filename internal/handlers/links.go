package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/samber/lo"
	"github.com/serroba/dynamic-qr/internal/events"
	"github.com/serroba/dynamic-qr/internal/links"
	"github.com/serroba/dynamic-qr/internal/middleware"
	"go.uber.org/zap"
)

// LinkManager is the administrative side of the link lifecycle.
type LinkManager interface {
	Create(ctx context.Context, destination string) (*links.Created, error)
	Update(ctx context.Context, code links.Code, destination string) (*links.ShortLink, error)
	Get(ctx context.Context, code links.Code) (*links.ShortLink, error)
	List(ctx context.Context) ([]*links.ShortLink, error)
	ShortURL(code links.Code) string
}

// LinkHandler serves the admin link API.
type LinkHandler struct {
	manager   LinkManager
	publisher events.Publisher
	logger    *zap.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(manager LinkManager, publisher events.Publisher, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		manager:   manager,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateLink mints a short code and QR image for a destination.
func (h *LinkHandler) CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error) {
	created, err := h.manager.Create(ctx, req.Body.DestinationURL)
	if err != nil {
		return nil, h.toHTTPError(err, "failed to create link")
	}

	link := created.Link
	meta, _ := middleware.RequestMetaFromContext(ctx)

	if err := h.publisher.LinkCreated(ctx, &events.LinkCreated{
		Code:           string(link.Code),
		DestinationURL: link.DestinationURL,
		QRImageURL:     link.QRImageURL,
		CreatedAt:      link.CreatedAt,
		ClientIP:       meta.ClientIP,
		UserAgent:      meta.UserAgent,
	}); err != nil {
		h.logger.Warn("failed to publish link created event", zap.String("code", string(link.Code)), zap.Error(err))
	}

	h.logger.Info("link created",
		zap.String("code", string(link.Code)),
		zap.String("destinationUrl", link.DestinationURL),
	)

	return &CreateLinkResponse{
		Location: created.ShortURL,
		Body:     h.toBody(link),
	}, nil
}

// ListLinks returns every link, newest first.
func (h *LinkHandler) ListLinks(ctx context.Context, _ *struct{}) (*ListLinksResponse, error) {
	all, err := h.manager.List(ctx)
	if err != nil {
		return nil, h.toHTTPError(err, "failed to list links")
	}

	resp := &ListLinksResponse{}
	resp.Body.Links = lo.Map(all, func(link *links.ShortLink, _ int) LinkBody {
		return h.toBody(link)
	})

	return resp, nil
}

// GetLink returns one link.
func (h *LinkHandler) GetLink(ctx context.Context, req *LinkCodeRequest) (*LinkResponse, error) {
	link, err := h.manager.Get(ctx, links.Code(req.Code))
	if err != nil {
		return nil, h.toHTTPError(err, "failed to get link")
	}

	return &LinkResponse{Body: h.toBody(link)}, nil
}

// UpdateLink points an existing code at a new destination.
func (h *LinkHandler) UpdateLink(ctx context.Context, req *UpdateLinkRequest) (*LinkResponse, error) {
	link, err := h.manager.Update(ctx, links.Code(req.Code), req.Body.DestinationURL)
	if err != nil {
		return nil, h.toHTTPError(err, "failed to update link")
	}

	meta, _ := middleware.RequestMetaFromContext(ctx)

	if err := h.publisher.LinkUpdated(ctx, &events.LinkUpdated{
		Code:           string(link.Code),
		DestinationURL: link.DestinationURL,
		UpdatedAt:      link.UpdatedAt,
		ClientIP:       meta.ClientIP,
		UserAgent:      meta.UserAgent,
	}); err != nil {
		h.logger.Warn("failed to publish link updated event", zap.String("code", string(link.Code)), zap.Error(err))
	}

	h.logger.Info("link destination updated",
		zap.String("code", string(link.Code)),
		zap.String("destinationUrl", link.DestinationURL),
	)

	return &LinkResponse{Body: h.toBody(link)}, nil
}

func (h *LinkHandler) toBody(link *links.ShortLink) LinkBody {
	return LinkBody{
		ShortCode:      string(link.Code),
		ShortURL:       h.manager.ShortURL(link.Code),
		DestinationURL: link.DestinationURL,
		QRImageURL:     link.QRImageURL,
		CreatedAt:      link.CreatedAt,
		UpdatedAt:      link.UpdatedAt,
	}
}

// toHTTPError maps domain errors to stable client messages. Unexpected
// errors are logged and reported as 500 with msg.
func (h *LinkHandler) toHTTPError(err error, msg string) error {
	switch {
	case errors.Is(err, links.ErrInvalidDestination):
		return huma.Error400BadRequest("invalid destination url")
	case errors.Is(err, links.ErrNotFound):
		return huma.Error404NotFound("link not found")
	case errors.Is(err, context.Canceled):
		return huma.NewError(http.StatusRequestTimeout, "request cancelled")
	}

	h.logger.Error(msg, zap.Error(err))

	return huma.Error500InternalServerError(msg)
}
