package verification

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/abt/cbhts-integration/internal/domain/cbhts"
	"github.com/abt/cbhts-integration/internal/platform/auth"
)

// Processor is the part of Service the handler needs.
type Processor interface {
	Process(ctx context.Context, req *Request) (*Summary, error)
}

type Handler struct {
	svc    Processor
	logger zerolog.Logger
}

func NewHandler(svc Processor, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/verification-results", h.SubmitResults)
}

func (h *Handler) SubmitResults(c echo.Context) error {
	var req *Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, cbhts.ErrorResponse{Message: "Invalid request payload", Details: []string{err.Error()}})
	}

	summary, err := h.svc.Process(c.Request().Context(), req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, cbhts.ErrorResponse{Message: "Invalid request payload", Details: verr.Details})
		}
		h.logger.Error().Err(err).
			Str("client_id", auth.ClientIDFromContext(c.Request().Context())).
			Msg("verification results failed")
		return c.JSON(http.StatusInternalServerError, cbhts.ErrorResponse{Message: "Failed to process integration request", Details: []string{err.Error()}})
	}
	return c.JSON(http.StatusOK, summary)
}
