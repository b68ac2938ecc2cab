// Package role provides the authorization gate. Each route declares the
// exact set of roles allowed to call it; there is no role hierarchy, so a
// role grants access only where it is listed.
package role

import (
	"fmt"
	"log/slog"
	"net/http"

	"tapcard/internal/auth/models"
	"tapcard/pkg/platform/audit"
	request "tapcard/pkg/platform/middleware/request"
	"tapcard/pkg/requestcontext"
)

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// Require allows the request through only when the authenticated identity
// holds one of the given roles. It must run after the session verifier.
func Require(logger *slog.Logger, audits audit.Publisher, allowed ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identity, ok := requestcontext.AuthIdentity(ctx)
			if !ok {
				// Misconfigured route: the verifier did not run first.
				logger.ErrorContext(ctx, "role gate reached without identity",
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
				return
			}

			if !identity.Role.In(allowed...) {
				logger.WarnContext(ctx, "forbidden access",
					"request_id", request.GetRequestID(ctx),
					"subject", identity.Subject,
					"role", identity.Role,
				)
				if err := audits.Emit(ctx, audit.SecurityEvent{
					Action:    audit.EventForbiddenAccess,
					Subject:   identity.Subject,
					RequestID: request.GetRequestID(ctx),
					Reason:    "role " + string(identity.Role) + " not permitted on " + r.Method + " " + r.URL.Path,
					Severity:  audit.SeverityWarning,
				}); err != nil {
					logger.ErrorContext(ctx, "failed to emit audit event", "error", err)
				}
				writeJSONError(w, http.StatusForbidden, "forbidden", "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
