package card

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"tapcard/internal/card/models"
	"tapcard/pkg/platform/sentinel"
)

// PostgresStore persists cards in the cards table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres creates a card store backed by the given database.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// List returns all cards ordered by ID.
func (s *PostgresStore) List(ctx context.Context) ([]*models.Card, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, title, company, email, phone, website, avatar_url, updated_at
		FROM cards
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %v: %w", err, sentinel.ErrUnavailable)
	}
	defer rows.Close()

	var cards []*models.Card
	for rows.Next() {
		var c models.Card
		if err := rows.Scan(&c.ID, &c.Name, &c.Title, &c.Company, &c.Email, &c.Phone, &c.Website, &c.AvatarURL, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cards: %v: %w", err, sentinel.ErrUnavailable)
	}
	return cards, nil
}

// Get returns the card with the given ID.
func (s *PostgresStore) Get(ctx context.Context, cardID string) (*models.Card, error) {
	var c models.Card
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, title, company, email, phone, website, avatar_url, updated_at
		FROM cards
		WHERE id = $1`, cardID).
		Scan(&c.ID, &c.Name, &c.Title, &c.Company, &c.Email, &c.Phone, &c.Website, &c.AvatarURL, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("card %s: %w", cardID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get card: %v: %w", err, sentinel.ErrUnavailable)
	}
	return &c, nil
}

// Save upserts a card.
func (s *PostgresStore) Save(ctx context.Context, card *models.Card) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cards (id, name, title, company, email, phone, website, avatar_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			title = EXCLUDED.title,
			company = EXCLUDED.company,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			website = EXCLUDED.website,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = EXCLUDED.updated_at`,
		card.ID, card.Name, card.Title, card.Company, card.Email, card.Phone, card.Website, card.AvatarURL, card.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save card: %v: %w", err, sentinel.ErrUnavailable)
	}
	return nil
}
