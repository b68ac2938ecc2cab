// Package auth provides the session verification middleware. It parses the
// bearer credential, authenticates it through the auth service, and attaches
// the resulting identity to the request context for downstream gates.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"tapcard/internal/auth/models"
	dErrors "tapcard/pkg/domain-errors"
	request "tapcard/pkg/platform/middleware/request"
	"tapcard/pkg/requestcontext"
)

// Authenticator validates a bearer access credential and resolves the
// subject's current user record.
type Authenticator interface {
	Authenticate(ctx context.Context, bearerToken string) (*models.User, error)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

func RequireAuth(authenticator Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			if token, ok := strings.CutPrefix(authHeader, bearerPrefix); ok && token != "" {
				ctx := r.Context()
				user, err := authenticator.Authenticate(ctx, token)
				if err != nil {
					requestID := request.GetRequestID(ctx)
					if dErrors.Is(err, dErrors.CodeUnavailable) {
						// Infrastructure outage, not a bad credential: clients
						// must not treat this as a reason to discard tokens.
						logger.ErrorContext(ctx, "session verification unavailable",
							"error", err,
							"request_id", requestID,
						)
						writeJSONError(w, http.StatusServiceUnavailable, "unavailable", "Unable to verify session")
						return
					}
					logger.WarnContext(ctx, "unauthorized access - invalid token",
						"error", err,
						"request_id", requestID,
					)
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
					return
				}

				ctx = requestcontext.WithIdentity(ctx, requestcontext.Identity{
					Subject: user.ID,
					Email:   user.Email,
					Role:    user.Role,
				})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			// No Authorization header or invalid format
			ctx := r.Context()
			logger.WarnContext(ctx, "unauthorized access - missing token",
				"request_id", request.GetRequestID(ctx),
			)
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
		})
	}
}
