// Package handler wires the session issuance endpoints to the auth service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tapcard/internal/auth/models"
	dErrors "tapcard/pkg/domain-errors"
	"tapcard/pkg/platform/httputil"
	"tapcard/pkg/requestcontext"
)

// Service defines the session issuance operations the handler exposes.
type Service interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error)
	Refresh(ctx context.Context, req *models.RefreshRequest) (*models.RefreshResult, error)
}

// Handler wires auth endpoints to the auth service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an auth handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the public auth endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/auth/login", h.HandleLogin)
	r.Post("/api/auth/refresh", h.HandleRefresh)
}

// RegisterProtected mounts endpoints that require a verified session.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/api/admin/verify", h.HandleVerify)
}

// HandleLogin handles POST /api/auth/login requests.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Login(ctx, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "login handled",
		"request_id", requestID,
		"subject", result.User.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromLoginResult(result))
}

// HandleRefresh handles POST /api/auth/refresh requests.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.RefreshRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Refresh(ctx, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromRefreshResult(result))
}

// HandleVerify handles GET /api/admin/verify requests. The session verifier
// middleware has already authenticated the caller; this endpoint just
// reflects the resulting identity so clients can restore UI state.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestcontext.AuthIdentity(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, VerifyResponse{
		Valid: true,
		User: models.UserView{
			ID:    identity.Subject,
			Email: identity.Email,
			Role:  identity.Role,
		},
	})
}
