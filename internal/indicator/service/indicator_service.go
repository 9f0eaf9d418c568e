package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gelzieny/remix-of-economic-insight/internal/indicator/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/indicator/repository"
	"github.com/Gelzieny/remix-of-economic-insight/internal/policy/engine"
	"github.com/Gelzieny/remix-of-economic-insight/internal/telemetry"
)

const eventSource = "indicator-service"

var (
	ErrNotFound  = errors.New("indicator reading not found")
	ErrForbidden = errors.New("not allowed to modify this reading")
)

// ListFilter narrows List. Zero values mean no restriction.
type ListFilter struct {
	Kinds []domain.Kind
	Since time.Time
}

// Service manages indicator readings and builds the dashboard.
type Service struct {
	repo   repository.Repository
	policy engine.Evaluator
	events telemetry.EventEmitter
	logger *zap.Logger
	now    func() time.Time
}

// NewService returns an indicator service. policy decides reading ownership on delete.
func NewService(repo repository.Repository, policy engine.Evaluator) *Service {
	return &Service{repo: repo, policy: policy, logger: zap.NewNop(), now: time.Now}
}

// WithEvents makes the service publish reading.created and reading.deleted events to emitter.
func (s *Service) WithEvents(emitter telemetry.EventEmitter, logger *zap.Logger) *Service {
	s.events = emitter
	if logger != nil {
		s.logger = logger
	}
	return s
}

type readingEvent struct {
	ID            string  `json:"id"`
	Indicator     string  `json:"indicator"`
	Value         float64 `json:"value,omitempty"`
	ReferenceDate string  `json:"reference_date"`
}

func (s *Service) emit(eventType string, r *domain.Reading) {
	if s.events == nil {
		return
	}
	payload := readingEvent{
		ID:            r.ID,
		Indicator:     string(r.Kind),
		Value:         r.Value,
		ReferenceDate: r.ReferenceDate.Format(domain.DateLayout),
	}
	telemetry.EmitAsync(s.events, s.logger, telemetry.NewEvent(eventType, eventSource, r.UserID, payload))
}

// Create stores a new reading for userID.
func (s *Service) Create(ctx context.Context, userID string, kind domain.Kind, value float64, date time.Time) (*domain.Reading, error) {
	r := &domain.Reading{
		ID:            uuid.New().String(),
		UserID:        userID,
		Kind:          kind,
		Value:         value,
		ReferenceDate: date.UTC().Truncate(24 * time.Hour),
		CreatedAt:     s.now().UTC(),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create reading: %w", err)
	}
	s.emit(telemetry.EventReadingCreated, r)
	return r, nil
}

// List returns the user's own readings ordered by reference date.
func (s *Service) List(ctx context.Context, userID string, f ListFilter) ([]*domain.Reading, error) {
	list, err := s.repo.ListByUser(ctx, userID, repository.Filter{Kinds: f.Kinds, Since: f.Since})
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	return list, nil
}

// Delete removes a reading owned by userID. Readings of other users and of the reference series
// are rejected with ErrForbidden.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get reading: %w", err)
	}
	if r == nil {
		return ErrNotFound
	}
	ok, err := s.policy.Allow(ctx, engine.Input{Action: engine.ActionDelete, SubjectID: userID, OwnerID: r.UserID})
	if err != nil {
		return fmt.Errorf("authorize delete: %w", err)
	}
	if !ok {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete reading: %w", err)
	}
	s.emit(telemetry.EventReadingDeleted, r)
	return nil
}

// Dashboard returns one series per kind with data in the period, in canonical kind order. The
// user's readings are merged with the reference series; a user reading replaces the reference
// reading of the same kind and date. A year of extra history is read so the annual change is
// available for short periods.
func (s *Service) Dashboard(ctx context.Context, userID string, period domain.Period) ([]domain.Series, error) {
	since := period.Since(s.now())
	f := repository.Filter{Since: since.AddDate(-1, 0, 0)}

	own, err := s.repo.ListByUser(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	var reference []*domain.Reading
	if userID != domain.SystemUserID {
		reference, err = s.repo.ListByUser(ctx, domain.SystemUserID, f)
		if err != nil {
			return nil, fmt.Errorf("list reference readings: %w", err)
		}
	}

	groups := domain.GroupByKind(domain.MergeReadings(deref(own), deref(reference)))
	out := make([]domain.Series, 0, len(groups))
	for _, k := range domain.AllKinds {
		readings, ok := groups[k]
		if !ok {
			continue
		}
		series := domain.BuildSeries(k, readings).Window(since)
		if len(series.HistoricalData) == 0 {
			continue
		}
		out = append(out, series)
	}
	return out, nil
}

func deref(list []*domain.Reading) []domain.Reading {
	out := make([]domain.Reading, 0, len(list))
	for _, r := range list {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
