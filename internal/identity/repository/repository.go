package repository

import (
	"context"

	"github.com/Gelzieny/remix-of-economic-insight/internal/identity/domain"
)

// Repository defines persistence for password reset tokens.
type Repository interface {
	Create(ctx context.Context, p *domain.PasswordReset) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.PasswordReset, error)
	// MarkUsed sets used_at once; it reports false when the token was already used.
	MarkUsed(ctx context.Context, id string) (bool, error)
}
