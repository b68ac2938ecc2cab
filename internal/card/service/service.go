// Package service implements card listing and updates for the admin surface.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"tapcard/internal/card/models"
	dErrors "tapcard/pkg/domain-errors"
	"tapcard/pkg/platform/sentinel"
	"tapcard/pkg/requestcontext"
)

// Store is the card persistence contract the service depends on.
type Store interface {
	List(ctx context.Context) ([]*models.Card, error)
	Get(ctx context.Context, cardID string) (*models.Card, error)
	Save(ctx context.Context, card *models.Card) error
}

// Service exposes card operations to the admin handlers.
type Service struct {
	store  Store
	logger *slog.Logger
	tracer trace.Tracer
}

// New constructs the card service.
func New(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		tracer: otel.Tracer("tapcard/internal/card/service"),
	}
}

// List returns every card.
func (s *Service) List(ctx context.Context) ([]*models.Card, error) {
	ctx, span := s.tracer.Start(ctx, "card.List")
	defer span.End()

	cards, err := s.store.List(ctx)
	if err != nil {
		return nil, s.storeFailure(ctx, err)
	}
	return cards, nil
}

// Update replaces the editable fields of an existing card. Cards are created
// out of band; updating an unknown ID is an error, not an upsert.
func (s *Service) Update(ctx context.Context, cardID string, req *models.UpdateRequest) (*models.Card, error) {
	ctx, span := s.tracer.Start(ctx, "card.Update")
	defer span.End()

	if _, err := s.store.Get(ctx, cardID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "card not found")
		}
		return nil, s.storeFailure(ctx, err)
	}

	card := &models.Card{
		ID:        cardID,
		Name:      req.Name,
		Title:     req.Title,
		Company:   req.Company,
		Email:     req.Email,
		Phone:     req.Phone,
		Website:   req.Website,
		AvatarURL: req.AvatarURL,
		UpdatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Save(ctx, card); err != nil {
		return nil, s.storeFailure(ctx, err)
	}

	s.logger.InfoContext(ctx, "card updated",
		"request_id", requestcontext.RequestID(ctx),
		"card_id", cardID,
		"subject", requestcontext.Subject(ctx),
	)
	return card, nil
}

func (s *Service) storeFailure(ctx context.Context, err error) error {
	s.logger.ErrorContext(ctx, "card store failure",
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "card store unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "card store operation failed")
}
