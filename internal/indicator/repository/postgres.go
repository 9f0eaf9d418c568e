package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Gelzieny/remix-of-economic-insight/internal/db/sqlc/gen"
	"github.com/Gelzieny/remix-of-economic-insight/internal/indicator/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a reading repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// GetByID returns the reading for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Reading, error) {
	rd, err := r.queries.GetReading(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genReadingToDomain(&rd), nil
}

// ListByUser returns the user's readings ordered by reference date, then insertion.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, f Filter) ([]*domain.Reading, error) {
	rows, err := r.queries.ListReadingsByUser(ctx, gen.ListReadingsByUserParams{
		UserID: userID,
		Kinds:  joinKinds(f.Kinds),
		Since:  f.Since,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Reading, 0, len(rows))
	for i := range rows {
		out = append(out, genReadingToDomain(&rows[i]))
	}
	return out, nil
}

// Create persists the reading. The reading must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, rd *domain.Reading) error {
	return r.queries.CreateReading(ctx, gen.CreateReadingParams{
		ID:            rd.ID,
		UserID:        rd.UserID,
		Indicator:     gen.IndicatorType(rd.Kind),
		Value:         rd.Value,
		ReferenceDate: rd.ReferenceDate,
		CreatedAt:     rd.CreatedAt,
	})
}

// Delete removes the reading. Deleting an unknown id is a no-op.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.queries.DeleteReading(ctx, id)
}

func joinKinds(kinds []domain.Kind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}

func genReadingToDomain(rd *gen.EconomicIndicator) *domain.Reading {
	if rd == nil {
		return nil
	}
	return &domain.Reading{
		ID:            rd.ID,
		UserID:        rd.UserID,
		Kind:          domain.Kind(rd.Indicator),
		Value:         rd.Value,
		ReferenceDate: rd.ReferenceDate,
		CreatedAt:     rd.CreatedAt,
	}
}
