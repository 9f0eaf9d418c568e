package repository

import (
	"context"
	"database/sql"

	"github.com/Gelzieny/remix-of-economic-insight/internal/audit/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/db/sqlc/gen"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// ListByUser returns the user's audit logs, newest first, paginated by limit and offset.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.queries.ListAuditLogsByUser(ctx, gen.ListAuditLogsByUserParams{
		UserID: sql.NullString{String: userID, Valid: userID != ""},
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.AuditLog, 0, len(rows))
	for i := range rows {
		out = append(out, genAuditLogToDomain(&rows[i]))
	}
	return out, nil
}

// Create persists the audit log to the database. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	return r.queries.CreateAuditLog(ctx, gen.CreateAuditLogParams{
		ID:        a.ID,
		UserID:    sql.NullString{String: a.UserID, Valid: a.UserID != ""},
		Action:    a.Action,
		Resource:  a.Resource,
		IP:        a.IP,
		Metadata:  a.Metadata,
		CreatedAt: a.CreatedAt,
	})
}

func genAuditLogToDomain(a *gen.AuditLog) *domain.AuditLog {
	if a == nil {
		return nil
	}
	userID := ""
	if a.UserID.Valid {
		userID = a.UserID.String
	}
	return &domain.AuditLog{
		ID:        a.ID,
		UserID:    userID,
		Action:    a.Action,
		Resource:  a.Resource,
		IP:        a.IP,
		Metadata:  a.Metadata,
		CreatedAt: a.CreatedAt,
	}
}
