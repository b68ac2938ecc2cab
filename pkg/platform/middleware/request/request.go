// Package request provides middleware that assigns every request a unique ID
// and echoes it back to the caller, so a single ID ties together logs, audit
// events, and client-reported failures.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"tapcard/pkg/requestcontext"
)

const headerRequestID = "X-Request-ID"

// Middleware stores a request ID in the context and the response headers.
// An ID supplied by the caller is preserved so IDs propagate across hops.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(headerRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
