package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Gelzieny/remix-of-economic-insight/internal/db/sqlc/gen"
	"github.com/Gelzieny/remix-of-economic-insight/internal/identity/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a password reset repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// Create persists the reset token. The record must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.PasswordReset) error {
	return r.queries.CreatePasswordReset(ctx, gen.CreatePasswordResetParams{
		ID:        p.ID,
		UserID:    p.UserID,
		TokenHash: p.TokenHash,
		ExpiresAt: p.ExpiresAt,
		CreatedAt: p.CreatedAt,
	})
}

// GetByTokenHash returns the reset for the hash, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.PasswordReset, error) {
	p, err := r.queries.GetPasswordResetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genPasswordResetToDomain(&p), nil
}

func (r *PostgresRepository) MarkUsed(ctx context.Context, id string) (bool, error) {
	n, err := r.queries.MarkPasswordResetUsed(ctx, gen.MarkPasswordResetUsedParams{
		ID:     id,
		UsedAt: sql.NullTime{Time: time.Now().UTC(), Valid: true},
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func genPasswordResetToDomain(p *gen.PasswordReset) *domain.PasswordReset {
	if p == nil {
		return nil
	}
	out := &domain.PasswordReset{
		ID:        p.ID,
		UserID:    p.UserID,
		TokenHash: p.TokenHash,
		ExpiresAt: p.ExpiresAt,
		CreatedAt: p.CreatedAt,
	}
	if p.UsedAt.Valid {
		out.UsedAt = &p.UsedAt.Time
	}
	return out
}
