package repository

import (
	"context"

	"github.com/Gelzieny/remix-of-economic-insight/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error)
	Create(ctx context.Context, a *domain.AuditLog) error
}
