// Package service implements visit tracking and per-card analytics summaries.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mssola/useragent"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"tapcard/internal/analytics/metrics"
	"tapcard/internal/analytics/models"
	dErrors "tapcard/pkg/domain-errors"
	"tapcard/pkg/platform/sentinel"
	"tapcard/pkg/requestcontext"
)

// Store is the visit persistence contract the service depends on.
type Store interface {
	Insert(ctx context.Context, visit *models.Visit) error
	Summary(ctx context.Context, cardID string) (*models.Summary, error)
}

// Service records card visits and aggregates them for the admin surface.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// New constructs the analytics service.
func New(store Store, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("tapcard/internal/analytics/service"),
	}
}

// Track records one visit. The client-reported device class wins when it is
// one of the known values; otherwise the User-Agent header is classified.
// Tracking is fire-and-forget for visitors, so the card ID is not checked
// against the card store.
func (s *Service) Track(ctx context.Context, req *models.TrackRequest, userAgent string) error {
	ctx, span := s.tracer.Start(ctx, "analytics.Track")
	defer span.End()

	device := models.ParseDevice(req.Device)
	if device == "" {
		device = classify(userAgent)
	}

	visit := &models.Visit{
		CardID:    req.CardID,
		Device:    device,
		Timestamp: requestcontext.Now(ctx),
	}
	if err := s.store.Insert(ctx, visit); err != nil {
		return s.storeFailure(ctx, err)
	}

	s.metrics.VisitsTracked.WithLabelValues(string(device)).Inc()
	return nil
}

// Summary returns the aggregated visits for one card. A card with no visits
// yields a zero summary rather than an error.
func (s *Service) Summary(ctx context.Context, cardID string) (*models.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.Summary")
	defer span.End()

	summary, err := s.store.Summary(ctx, cardID)
	if err != nil {
		return nil, s.storeFailure(ctx, err)
	}
	return summary, nil
}

// classify derives a device class from the User-Agent header. Tablets report
// as mobile in most UA strings, so the platform is checked first.
func classify(rawUA string) models.Device {
	if rawUA == "" {
		return models.DeviceUnknown
	}
	ua := useragent.New(rawUA)
	if ua.Bot() {
		return models.DeviceUnknown
	}
	platform := strings.ToLower(ua.Platform())
	if strings.Contains(platform, "ipad") || strings.Contains(strings.ToLower(rawUA), "tablet") {
		return models.DeviceTablet
	}
	if ua.Mobile() {
		return models.DeviceMobile
	}
	return models.DeviceDesktop
}

func (s *Service) storeFailure(ctx context.Context, err error) error {
	s.logger.ErrorContext(ctx, "visit store failure",
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "analytics store unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "analytics store operation failed")
}
