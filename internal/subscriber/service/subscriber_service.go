package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gelzieny/remix-of-economic-insight/internal/subscriber/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/subscriber/repository"
	userdomain "github.com/Gelzieny/remix-of-economic-insight/internal/user/domain"
)

// ErrUserNotFound is returned when the subscribing user does not exist.
var ErrUserNotFound = errors.New("user not found")

// UserGetter loads the subscribing user.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// Service manages report subscriptions.
type Service struct {
	repo  repository.Repository
	users UserGetter
	now   func() time.Time
}

// NewService returns a subscription service.
func NewService(repo repository.Repository, users UserGetter) *Service {
	return &Service{repo: repo, users: users, now: time.Now}
}

// Get reports whether the user receives the report. No subscription means false.
func (s *Service) Get(ctx context.Context, userID string) (bool, error) {
	sub, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("get subscription: %w", err)
	}
	return sub != nil && sub.Active, nil
}

// SetActive updates the existing subscription, or creates one with the user's email and the
// email local part as name.
func (s *Service) SetActive(ctx context.Context, userID string, active bool) error {
	sub, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("get subscription: %w", err)
	}
	if sub != nil {
		return s.repo.SetActive(ctx, userID, active)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return ErrUserNotFound
	}
	now := s.now().UTC()
	return s.repo.Create(ctx, &domain.Subscriber{
		ID:        uuid.New().String(),
		UserID:    userID,
		Email:     u.Email,
		Name:      userdomain.NameFromEmail(u.Email),
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// ListActive returns the subscribers that receive the report.
func (s *Service) ListActive(ctx context.Context) ([]*domain.Subscriber, error) {
	list, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return list, nil
}
