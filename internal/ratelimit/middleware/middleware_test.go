package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tapcard/internal/ratelimit/metrics"
	"tapcard/internal/ratelimit/models"
	"tapcard/internal/ratelimit/store"
	"tapcard/pkg/platform/audit"
	"tapcard/pkg/platform/sentinel"
)

// promauto registers against the global registry; construct once per test binary.
var limiterMetrics = metrics.New()

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func newLimiter(s Store, limit int) *Middleware {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(s, logger, audit.NopPublisher{}, limiterMetrics, limit, 15*time.Minute)
}

func TestLimit(t *testing.T) {
	t.Run("requests under the budget pass with headers", func(t *testing.T) {
		handler := newLimiter(store.NewMemory(), 2).Limit(okHandler())

		req := httptest.NewRequest(http.MethodPost, "/api/analytics", nil)
		req.RemoteAddr = "1.2.3.4:5123"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("requests over the budget get 429 with Retry-After", func(t *testing.T) {
		handler := newLimiter(store.NewMemory(), 1).Limit(okHandler())

		for range 2 {
			req := httptest.NewRequest(http.MethodPost, "/api/analytics", nil)
			req.RemoteAddr = "1.2.3.4:5123"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code == http.StatusTooManyRequests {
				assert.NotEmpty(t, rec.Header().Get("Retry-After"))
				assert.Contains(t, rec.Body.String(), "rate_limited")
				return
			}
		}
		t.Fatal("second request was not rejected")
	})

	t.Run("clients are budgeted separately", func(t *testing.T) {
		handler := newLimiter(store.NewMemory(), 1).Limit(okHandler())

		first := httptest.NewRequest(http.MethodPost, "/api/analytics", nil)
		first.RemoteAddr = "1.2.3.4:5123"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, first)
		require.Equal(t, http.StatusOK, rec.Code)

		second := httptest.NewRequest(http.MethodPost, "/api/analytics", nil)
		second.RemoteAddr = "5.6.7.8:5123"
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, second)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("forwarded header identifies the client behind a proxy", func(t *testing.T) {
		handler := newLimiter(store.NewMemory(), 1).Limit(okHandler())

		for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
			req := httptest.NewRequest(http.MethodPost, "/api/analytics", nil)
			req.RemoteAddr = "10.0.0.1:4000" // proxy address varies per hop
			req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, want, rec.Code, "request %d", i+1)
		}
	})

	t.Run("counter failure fails open", func(t *testing.T) {
		handler := newLimiter(failingStore{}, 1).Limit(okHandler())

		req := httptest.NewRequest(http.MethodPost, "/api/analytics", nil)
		req.RemoteAddr = "1.2.3.4:5123"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*models.Result, error) {
	return nil, sentinel.ErrUnavailable
}
