package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"tapcard/internal/auth/models"
	"tapcard/pkg/platform/sentinel"
)

// PostgresStore persists user records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, subjectID string) (*models.User, error) {
	var (
		u       models.User
		roleRaw string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, role, created_at, updated_at FROM users WHERE id = $1`,
		subjectID,
	).Scan(&u.ID, &u.Email, &roleRaw, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", subjectID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %v: %w", err, sentinel.ErrUnavailable)
	}

	role, err := models.ParseRole(roleRaw)
	if err != nil {
		return nil, fmt.Errorf("user %q has malformed role %q: %w", subjectID, roleRaw, sentinel.ErrInvalidState)
	}
	u.Role = role
	return &u, nil
}

func (s *PostgresStore) Save(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			role = EXCLUDED.role,
			updated_at = NOW()
	`, u.ID, u.Email, string(u.Role))
	if err != nil {
		return fmt.Errorf("save user: %v: %w", err, sentinel.ErrUnavailable)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, subjectID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, subjectID)
	if err != nil {
		return fmt.Errorf("delete user: %v: %w", err, sentinel.ErrUnavailable)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %q: %w", subjectID, sentinel.ErrNotFound)
	}
	return nil
}
