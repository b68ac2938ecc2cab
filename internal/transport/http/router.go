// Package httptransport composes the HTTP surface: public auth and tracking
// endpoints, the admin surface behind the session verifier and role gates,
// and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	analyticshandler "tapcard/internal/analytics/handler"
	authhandler "tapcard/internal/auth/handler"
	authmodels "tapcard/internal/auth/models"
	cardhandler "tapcard/internal/card/handler"
	"tapcard/pkg/platform/audit"
	authmw "tapcard/pkg/platform/middleware/auth"
	request "tapcard/pkg/platform/middleware/request"
	"tapcard/pkg/platform/middleware/requesttime"
	"tapcard/pkg/platform/middleware/role"
)

// Deps carries everything the router composes.
type Deps struct {
	Logger        *slog.Logger
	Auth          *authhandler.Handler
	Cards         *cardhandler.Handler
	Analytics     *analyticshandler.Handler
	Authenticator authmw.Authenticator
	Audits        audit.Publisher
	// RateLimit guards the public endpoints. Pass nil to disable.
	RateLimit func(http.Handler) http.Handler
}

// NewRouter wires all endpoints with their middleware chains.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// Public surface: session issuance and visit tracking.
	r.Group(func(pub chi.Router) {
		if deps.RateLimit != nil {
			pub.Use(deps.RateLimit)
		}
		deps.Auth.Register(pub)
		deps.Analytics.Register(pub)
	})

	// Admin surface: every route passes the session verifier; each route
	// then declares its own role allow-list. The rate limit covers the
	// whole /api surface, authenticated or not.
	requireAuth := authmw.RequireAuth(deps.Authenticator, deps.Logger)
	r.Group(func(admin chi.Router) {
		if deps.RateLimit != nil {
			admin.Use(deps.RateLimit)
		}
		admin.Use(requireAuth)

		deps.Auth.RegisterProtected(admin)
		deps.Cards.Register(admin,
			role.Require(deps.Logger, deps.Audits, authmodels.RoleAdmin),
			role.Require(deps.Logger, deps.Audits, authmodels.RoleAdmin, authmodels.RoleEditor),
		)
		deps.Analytics.RegisterProtected(admin,
			role.Require(deps.Logger, deps.Audits, authmodels.RoleAdmin, authmodels.RoleViewer, authmodels.RoleEditor),
		)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
