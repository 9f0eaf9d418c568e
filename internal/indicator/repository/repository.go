package repository

import (
	"context"
	"time"

	"github.com/Gelzieny/remix-of-economic-insight/internal/indicator/domain"
)

// Filter narrows a reading listing. Zero values mean no restriction.
type Filter struct {
	Kinds []domain.Kind
	Since time.Time
}

// Repository defines persistence for indicator readings.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Reading, error)
	ListByUser(ctx context.Context, userID string, f Filter) ([]*domain.Reading, error)
	Create(ctx context.Context, r *domain.Reading) error
	Delete(ctx context.Context, id string) error
}
