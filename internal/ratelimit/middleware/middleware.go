// Package middleware applies a fixed-window per-client rate limit to the
// public API surface.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tapcard/internal/ratelimit/metrics"
	"tapcard/internal/ratelimit/models"
	"tapcard/pkg/platform/audit"
	request "tapcard/pkg/platform/middleware/request"
)

// Store counts requests per key within a window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

// Middleware enforces a per-IP request budget. Counter failures fail open:
// losing Redis must degrade to unlimited traffic, not an outage.
type Middleware struct {
	store   Store
	logger  *slog.Logger
	audits  audit.Publisher
	metrics *metrics.Metrics
	limit   int
	window  time.Duration
}

// New constructs the rate limit middleware.
func New(store Store, logger *slog.Logger, audits audit.Publisher, m *metrics.Metrics, limit int, window time.Duration) *Middleware {
	return &Middleware{
		store:   store,
		logger:  logger,
		audits:  audits,
		metrics: m,
		limit:   limit,
		window:  window,
	}
}

// Limit wraps a handler with the per-IP budget check.
func (m *Middleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := clientIP(r)

		result, err := m.store.Allow(ctx, "ratelimit:ip:"+ip, m.limit, m.window)
		if err != nil {
			m.metrics.CheckErrs.Inc()
			m.logger.ErrorContext(ctx, "rate limit check failed, allowing request",
				"request_id", request.GetRequestID(ctx),
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			m.metrics.Rejected.Inc()
			m.logger.WarnContext(ctx, "rate limit exceeded",
				"request_id", request.GetRequestID(ctx),
				"ip", ip,
			)
			if err := m.audits.Emit(ctx, audit.SecurityEvent{
				Action:    audit.EventRateLimitTripped,
				Reason:    "ip " + ip,
				RequestID: request.GetRequestID(ctx),
				Severity:  audit.SeverityWarning,
			}); err != nil {
				m.logger.ErrorContext(ctx, "failed to emit audit event", "error", err)
			}

			retryAfter := max(int(time.Until(result.ResetAt).Seconds()), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write(fmt.Appendf(nil, `{"error":"rate_limited","error_description":"Too many requests, retry after %d seconds"}`, retryAfter))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP resolves the caller's address, preferring the first hop recorded
// by a trusted proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
