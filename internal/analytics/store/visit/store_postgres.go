package visit

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"tapcard/internal/analytics/models"
	"tapcard/pkg/platform/sentinel"
)

// PostgresStore persists visits in the visits table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres creates a visit store backed by the given database.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Insert records a visit.
func (s *PostgresStore) Insert(ctx context.Context, visit *models.Visit) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visits (card_id, device, visited_at)
		VALUES ($1, $2, $3)`,
		visit.CardID, string(visit.Device), visit.Timestamp)
	if err != nil {
		return fmt.Errorf("insert visit: %v: %w", err, sentinel.ErrUnavailable)
	}
	return nil
}

// Summary aggregates the visits recorded for the given card. A card with no
// visits yields a zero summary.
func (s *PostgresStore) Summary(ctx context.Context, cardID string) (*models.Summary, error) {
	var summary models.Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE device = 'mobile'),
			COUNT(*) FILTER (WHERE device = 'tablet'),
			COUNT(*) FILTER (WHERE device = 'desktop')
		FROM visits
		WHERE card_id = $1`, cardID).
		Scan(&summary.TotalVisits, &summary.MobileVisits, &summary.TabletVisits, &summary.DesktopVisits)
	if err != nil {
		return nil, fmt.Errorf("summarize visits: %v: %w", err, sentinel.ErrUnavailable)
	}
	return &summary, nil
}
