package cbhts

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/abt/cbhts-integration/internal/platform/auth"
	"github.com/abt/cbhts-integration/pkg/pagination"
)

// ErrorResponse is the body of every non-2xx integration reply.
type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details"`
}

const (
	msgInvalidPayload = "Invalid request payload"
	msgFetchFailed    = "Failed to process integration request"
)

// PageFetcher is the part of Service the handler needs.
type PageFetcher interface {
	Fetch(ctx context.Context, req *Request) (*pagination.Page[OutputRecord], error)
}

type Handler struct {
	svc    PageFetcher
	logger zerolog.Logger
}

func NewHandler(svc PageFetcher, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/ctc2hts", h.FetchServices)
}

func (h *Handler) FetchServices(c echo.Context) error {
	var req *Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgInvalidPayload, Details: []string{bindMessage(err)}})
	}

	page, err := h.svc.Fetch(c.Request().Context(), req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgInvalidPayload, Details: verr.Details})
		}
		h.logger.Error().Err(err).
			Str("client_id", auth.ClientIDFromContext(c.Request().Context())).
			Msg("ctc2hts fetch failed")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: msgFetchFailed, Details: []string{err.Error()}})
	}
	return c.JSON(http.StatusOK, page)
}

func bindMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return msg
		}
	}
	return err.Error()
}
