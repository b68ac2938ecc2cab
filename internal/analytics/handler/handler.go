// Package handler wires the analytics endpoints to the analytics service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tapcard/internal/analytics/models"
	"tapcard/pkg/platform/httputil"
	"tapcard/pkg/requestcontext"
)

// Service defines the analytics operations the handler exposes.
type Service interface {
	Track(ctx context.Context, req *models.TrackRequest, userAgent string) error
	Summary(ctx context.Context, cardID string) (*models.Summary, error)
}

// Handler wires analytics endpoints to the analytics service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an analytics handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the public tracking endpoint.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/analytics", h.HandleTrack)
}

// RegisterProtected mounts the summary endpoint. The caller applies the
// session verifier and the role gate.
func (h *Handler) RegisterProtected(r chi.Router, gate func(http.Handler) http.Handler) {
	r.With(gate).Get("/api/admin/analytics/{cardID}", h.HandleSummary)
}

// HandleTrack handles POST /api/analytics requests.
func (h *Handler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.TrackRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Track(ctx, &req, r.UserAgent()); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// HandleSummary handles GET /api/admin/analytics/{cardID} requests.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")

	summary, err := h.service.Summary(r.Context(), cardID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, summary)
}
