package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Gelzieny/remix-of-economic-insight/internal/db/sqlc/gen"
	"github.com/Gelzieny/remix-of-economic-insight/internal/subscriber/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a subscriber repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// GetByUser returns the user's subscription, or nil if none.
func (r *PostgresRepository) GetByUser(ctx context.Context, userID string) (*domain.Subscriber, error) {
	s, err := r.queries.GetSubscriberByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genSubscriberToDomain(&s), nil
}

// Create persists the subscription. The subscriber must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Subscriber) error {
	return r.queries.CreateSubscriber(ctx, gen.CreateSubscriberParams{
		ID:        s.ID,
		UserID:    s.UserID,
		Email:     s.Email,
		Name:      s.Name,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	})
}

// SetActive flips the active flag of the user's subscription.
func (r *PostgresRepository) SetActive(ctx context.Context, userID string, active bool) error {
	return r.queries.SetSubscriberActive(ctx, gen.SetSubscriberActiveParams{
		UserID:    userID,
		Active:    active,
		UpdatedAt: time.Now().UTC(),
	})
}

// ListActive returns every active subscription ordered by creation.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]*domain.Subscriber, error) {
	rows, err := r.queries.ListActiveSubscribers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Subscriber, 0, len(rows))
	for i := range rows {
		out = append(out, genSubscriberToDomain(&rows[i]))
	}
	return out, nil
}

func genSubscriberToDomain(s *gen.Subscriber) *domain.Subscriber {
	if s == nil {
		return nil
	}
	return &domain.Subscriber{
		ID:        s.ID,
		UserID:    s.UserID,
		Email:     s.Email,
		Name:      s.Name,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
