package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Gelzieny/remix-of-economic-insight/internal/db/sqlc/gen"
	"github.com/Gelzieny/remix-of-economic-insight/internal/insight/domain"
)

type PostgresRepository struct {
	db      *sql.DB
	queries *gen.Queries
}

// NewPostgresRepository returns an insight repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, queries: gen.New(db)}
}

// GetByID returns the insight for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.GeneratedInsight, error) {
	g, err := r.queries.GetInsight(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genInsightToDomain(&g), nil
}

// ListByUser returns at most limit insights, newest reference date first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.GeneratedInsight, error) {
	rows, err := r.queries.ListInsightsByUser(ctx, gen.ListInsightsByUserParams{
		UserID: userID,
		Limit:  int32(limit),
	})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.GeneratedInsight, 0, len(rows))
	for i := range rows {
		out = append(out, genInsightToDomain(&rows[i]))
	}
	return out, nil
}

// Delete removes the insight. Deleting an unknown id is a no-op.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.queries.DeleteInsight(ctx, id)
}

// Replace deletes the same-day insight for the indicator and inserts g in one transaction.
func (r *PostgresRepository) Replace(ctx context.Context, g *domain.GeneratedInsight) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	q := r.queries.WithTx(tx)
	if err := q.DeleteInsightsForDay(ctx, gen.DeleteInsightsForDayParams{
		UserID:        g.UserID,
		Indicator:     gen.IndicatorType(g.Indicator),
		ReferenceDate: g.ReferenceDate,
	}); err != nil {
		return fmt.Errorf("delete previous insight: %w", err)
	}
	if err := q.CreateInsight(ctx, gen.CreateInsightParams{
		ID:            g.ID,
		UserID:        g.UserID,
		Indicator:     gen.IndicatorType(g.Indicator),
		Title:         g.Title,
		Description:   g.Description,
		Severity:      string(g.Severity),
		InsightType:   string(g.Type),
		ReferenceDate: g.ReferenceDate,
		CreatedAt:     g.CreatedAt,
	}); err != nil {
		return fmt.Errorf("insert insight: %w", err)
	}
	return tx.Commit()
}

func genInsightToDomain(g *gen.GeneratedInsight) *domain.GeneratedInsight {
	if g == nil {
		return nil
	}
	return &domain.GeneratedInsight{
		ID:            g.ID,
		UserID:        g.UserID,
		Indicator:     string(g.Indicator),
		Title:         g.Title,
		Description:   g.Description,
		Severity:      domain.Severity(g.Severity),
		Type:          domain.Type(g.InsightType),
		ReferenceDate: g.ReferenceDate,
		CreatedAt:     g.CreatedAt,
	}
}
