package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/serroba/dynamic-qr/internal/events"
	"github.com/serroba/dynamic-qr/internal/links"
	"github.com/serroba/dynamic-qr/internal/middleware"
	"go.uber.org/zap"
)

const htmlContentType = "text/html; charset=utf-8"

// LinkResolver looks up the current destination of a code.
type LinkResolver interface {
	Resolve(ctx context.Context, code links.Code) (*links.ShortLink, error)
}

// RedirectHandler serves public QR scans.
type RedirectHandler struct {
	resolver  LinkResolver
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewRedirectHandler creates a new redirect handler.
func NewRedirectHandler(resolver LinkResolver, publisher events.Publisher, logger *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		resolver:  resolver,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Redirect answers 307 to the current destination, or an HTML page for
// unknown codes and failures.
func (h *RedirectHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	link, err := h.resolver.Resolve(ctx, links.Code(req.Code))
	if err != nil {
		if errors.Is(err, links.ErrNotFound) {
			return htmlResponse(http.StatusNotFound, renderPage(notFoundPage, struct{ Code string }{req.Code})), nil
		}

		h.logger.Error("failed to resolve link", zap.String("code", req.Code), zap.Error(err))

		return htmlResponse(http.StatusInternalServerError, renderPage(errorPage, nil)), nil
	}

	meta, _ := middleware.RequestMetaFromContext(ctx)

	if err := h.publisher.LinkResolved(ctx, &events.LinkResolved{
		Code:           string(link.Code),
		DestinationURL: link.DestinationURL,
		ResolvedAt:     h.now().UTC(),
		ClientIP:       meta.ClientIP,
		UserAgent:      meta.UserAgent,
		Referrer:       meta.Referrer,
	}); err != nil {
		h.logger.Warn("failed to publish link resolved event", zap.String("code", req.Code), zap.Error(err))
	}

	return &RedirectResponse{
		Status:       http.StatusTemporaryRedirect,
		Location:     link.DestinationURL,
		CacheControl: "no-store",
	}, nil
}

func htmlResponse(status int, body []byte) *RedirectResponse {
	return &RedirectResponse{
		Status:       status,
		ContentType:  htmlContentType,
		CacheControl: "no-store",
		Body:         body,
	}
}
