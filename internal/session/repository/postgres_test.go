package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Gelzieny/remix-of-economic-insight/internal/session/domain"
)

var sessionCols = []string{"id", "user_id", "refresh_jti", "refresh_token_hash", "expires_at", "revoked_at", "last_seen_at", "ip_address", "created_at"}

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestGetByID_NullableTimes(t *testing.T) {
	repo, mock := newMockRepo(t)
	exp := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	seen := exp.Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("name: GetSession :one")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow("s1", "u1", "jti-1", "hash-1", exp, nil, seen, "10.0.0.1", exp.Add(-24*time.Hour)))

	s, err := repo.GetByID(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if s.RevokedAt != nil {
		t.Errorf("RevokedAt = %v, want nil", s.RevokedAt)
	}
	if s.LastSeenAt == nil || !s.LastSeenAt.Equal(seen) {
		t.Errorf("LastSeenAt = %v", s.LastSeenAt)
	}
	if s.RefreshJti != "jti-1" || s.IPAddress != "10.0.0.1" {
		t.Errorf("session = %+v", s)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("name: GetSession :one")).
		WillReturnRows(sqlmock.NewRows(sessionCols))

	s, err := repo.GetByID(context.Background(), "missing")
	if err != nil || s != nil {
		t.Fatalf("GetByID = %v, %v; want nil, nil", s, err)
	}
}

func TestGetByID_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta("name: GetSession :one")).WillReturnError(boom)

	if _, err := repo.GetByID(context.Background(), "s1"); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateAndRevoke(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("name: CreateSession :exec")).
		WithArgs("s1", "u1", "jti", "hash", now, "127.0.0.1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("name: RevokeSession :exec")).
		WithArgs("s1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("name: RevokeAllSessionsByUser :exec")).
		WithArgs("u1", sqlmock.AnyArg()).
		WillReturnError(errors.New("deadlock"))

	ctx := context.Background()
	err := repo.Create(ctx, &domain.Session{
		ID: "s1", UserID: "u1", RefreshJti: "jti", RefreshTokenHash: "hash",
		ExpiresAt: now, IPAddress: "127.0.0.1", CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Revoke(ctx, "s1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := repo.RevokeAllSessionsByUser(ctx, "u1"); err == nil {
		t.Fatal("RevokeAllSessionsByUser: expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateRefreshToken(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("name: UpdateSessionRefreshToken :exec")).
		WithArgs("s1", "jti-2", "hash-2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateRefreshToken(context.Background(), "s1", "jti-2", "hash-2"); err != nil {
		t.Fatalf("UpdateRefreshToken: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
