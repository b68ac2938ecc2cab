// Package handler wires the admin card endpoints to the card service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tapcard/internal/card/models"
	"tapcard/pkg/platform/httputil"
	"tapcard/pkg/requestcontext"
)

// Service defines the card operations the handler exposes.
type Service interface {
	List(ctx context.Context) ([]*models.Card, error)
	Update(ctx context.Context, cardID string, req *models.UpdateRequest) (*models.Card, error)
}

// Handler wires card endpoints to the card service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a card handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the card endpoints. The caller applies the session
// verifier and the per-route role gates.
func (h *Handler) Register(r chi.Router, listGate, updateGate func(http.Handler) http.Handler) {
	r.With(listGate).Get("/api/admin/cards", h.HandleList)
	r.With(updateGate).Put("/api/admin/cards/{cardID}", h.HandleUpdate)
}

// HandleList handles GET /api/admin/cards requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	cards, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if cards == nil {
		cards = []*models.Card{}
	}
	httputil.WriteJSON(w, http.StatusOK, cards)
}

// HandleUpdate handles PUT /api/admin/cards/{cardID} requests.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	cardID := chi.URLParam(r, "cardID")

	req, ok := httputil.DecodeAndPrepare[models.UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	card, err := h.service.Update(ctx, cardID, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, card)
}
