package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Gelzieny/remix-of-economic-insight/internal/db/sqlc/gen"
	"github.com/Gelzieny/remix-of-economic-insight/internal/session/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	s, err := r.queries.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genSessionToDomain(&s), nil
}

// Create persists the session. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	return r.queries.CreateSession(ctx, gen.CreateSessionParams{
		ID:               s.ID,
		UserID:           s.UserID,
		RefreshJti:       s.RefreshJti,
		RefreshTokenHash: s.RefreshTokenHash,
		ExpiresAt:        s.ExpiresAt,
		IPAddress:        s.IPAddress,
		CreatedAt:        s.CreatedAt,
	})
}

// Revoke marks the session revoked. Revoking an unknown or already revoked session is a no-op.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	return r.queries.RevokeSession(ctx, gen.RevokeSessionParams{
		ID:        id,
		RevokedAt: sql.NullTime{Time: time.Now().UTC(), Valid: true},
	})
}

// RevokeAllSessionsByUser revokes every live session of the user.
func (r *PostgresRepository) RevokeAllSessionsByUser(ctx context.Context, userID string) error {
	return r.queries.RevokeAllSessionsByUser(ctx, gen.RevokeAllSessionsByUserParams{
		UserID:    userID,
		RevokedAt: sql.NullTime{Time: time.Now().UTC(), Valid: true},
	})
}

func (r *PostgresRepository) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	return r.queries.UpdateSessionLastSeen(ctx, gen.UpdateSessionLastSeenParams{
		ID:         id,
		LastSeenAt: sql.NullTime{Time: at, Valid: true},
	})
}

// UpdateRefreshToken binds the session to a newly rotated refresh token.
func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error {
	return r.queries.UpdateSessionRefreshToken(ctx, gen.UpdateSessionRefreshTokenParams{
		ID:               sessionID,
		RefreshJti:       jti,
		RefreshTokenHash: refreshTokenHash,
	})
}

func genSessionToDomain(s *gen.Session) *domain.Session {
	if s == nil {
		return nil
	}
	out := &domain.Session{
		ID:               s.ID,
		UserID:           s.UserID,
		ExpiresAt:        s.ExpiresAt,
		IPAddress:        s.IPAddress,
		RefreshJti:       s.RefreshJti,
		RefreshTokenHash: s.RefreshTokenHash,
		CreatedAt:        s.CreatedAt,
	}
	if s.RevokedAt.Valid {
		out.RevokedAt = &s.RevokedAt.Time
	}
	if s.LastSeenAt.Valid {
		out.LastSeenAt = &s.LastSeenAt.Time
	}
	return out
}
