package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SuppressionRepository stores addresses that asked not to be emailed.
type SuppressionRepository interface {
	Add(ctx context.Context, email string) error
	IsSuppressed(ctx context.Context, email string) (bool, error)
}

type pgSuppressionRepository struct {
	db *sql.DB
}

func NewPgSuppressionRepository(db *sql.DB) SuppressionRepository {
	return &pgSuppressionRepository{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *pgSuppressionRepository) Add(ctx context.Context, email string) error {
	query := `INSERT INTO email_suppressions (email) VALUES ($1) ON CONFLICT (email) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, normalizeEmail(email)); err != nil {
		return fmt.Errorf("pgSuppressionRepository.Add: %w", err)
	}
	return nil
}

func (r *pgSuppressionRepository) IsSuppressed(ctx context.Context, email string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM email_suppressions WHERE email = $1`, normalizeEmail(email)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pgSuppressionRepository.IsSuppressed: %w", err)
	}
	return true, nil
}
