package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Gelzieny/remix-of-economic-insight/internal/db"
	"github.com/Gelzieny/remix-of-economic-insight/internal/db/sqlc/gen"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a preference repository that uses the given db for persistence.
func NewPostgresRepository(database *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(database)}
}

// Get returns the user's visible indicators, or nil if none are stored.
func (r *PostgresRepository) Get(ctx context.Context, userID string) ([]string, error) {
	kinds, err := r.queries.GetPreference(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if kinds == nil {
		return []string{}, nil
	}
	return []string(kinds), nil
}

// Save upserts the user's visible indicators.
func (r *PostgresRepository) Save(ctx context.Context, userID string, kinds []string) error {
	return r.queries.UpsertPreference(ctx, gen.UpsertPreferenceParams{
		UserID:            userID,
		VisibleIndicators: db.TextArray(kinds),
		UpdatedAt:         time.Now().UTC(),
	})
}
