package repository

import (
	"context"

	"github.com/Gelzieny/remix-of-economic-insight/internal/insight/domain"
)

// Repository defines persistence for stored insights.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.GeneratedInsight, error)
	// ListByUser returns the newest insights first by reference date, at most limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.GeneratedInsight, error)
	Delete(ctx context.Context, id string) error
	// Replace removes the user's insights for the same indicator and reference date, then stores g.
	Replace(ctx context.Context, g *domain.GeneratedInsight) error
}
