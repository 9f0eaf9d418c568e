package repository

import (
	"context"

	"github.com/Gelzieny/remix-of-economic-insight/internal/subscriber/domain"
)

// Repository defines persistence for report subscribers.
type Repository interface {
	GetByUser(ctx context.Context, userID string) (*domain.Subscriber, error)
	Create(ctx context.Context, s *domain.Subscriber) error
	SetActive(ctx context.Context, userID string, active bool) error
	ListActive(ctx context.Context) ([]*domain.Subscriber, error)
}
