package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	indicatordomain "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/insight/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/insight/repository"
	"github.com/Gelzieny/remix-of-economic-insight/internal/policy/engine"
	"github.com/Gelzieny/remix-of-economic-insight/internal/telemetry"
)

var (
	ErrNotFound  = errors.New("insight not found")
	ErrForbidden = errors.New("not allowed to delete this insight")
)

const (
	// ListLimit is how many stored insights the dashboard shows.
	ListLimit = 10
	// alertThreshold is the absolute monthly move in percent that raises an alert.
	alertThreshold = 5.0
	// moveThreshold separates rising and falling from stable.
	moveThreshold = 1.0
)

// SeriesSource builds the user's dashboard series.
type SeriesSource interface {
	Dashboard(ctx context.Context, userID string, period indicatordomain.Period) ([]indicatordomain.Series, error)
}

// Service manages stored, rule-based insights.
type Service struct {
	repo    repository.Repository
	series  SeriesSource
	policy  engine.Evaluator
	logger  *zap.Logger
	events  telemetry.EventEmitter
	printer *message.Printer
	now     func() time.Time
}

// NewService returns the stored insight service.
func NewService(repo repository.Repository, series SeriesSource, policy engine.Evaluator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		series:  series,
		policy:  policy,
		logger:  logger,
		printer: message.NewPrinter(language.BrazilianPortuguese),
		now:     time.Now,
	}
}

// WithEvents makes Refresh publish an insights.generated event to emitter.
func (s *Service) WithEvents(emitter telemetry.EventEmitter) *Service {
	s.events = emitter
	return s
}

// List returns the user's latest stored insights.
func (s *Service) List(ctx context.Context, userID string) ([]*domain.GeneratedInsight, error) {
	list, err := s.repo.ListByUser(ctx, userID, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	return list, nil
}

// Delete removes an insight owned by userID.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get insight: %w", err)
	}
	if g == nil {
		return ErrNotFound
	}
	ok, err := s.policy.Allow(ctx, engine.Input{Action: engine.ActionDelete, SubjectID: userID, OwnerID: g.UserID})
	if err != nil {
		return fmt.Errorf("authorize delete: %w", err)
	}
	if !ok {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

// Refresh regenerates stored insights for kinds (all kinds when empty). Each kind with data gets
// one insight for its latest reference date, replacing any earlier one for that date.
func (s *Service) Refresh(ctx context.Context, userID string, kinds []indicatordomain.Kind) ([]*domain.GeneratedInsight, error) {
	if len(kinds) == 0 {
		kinds = indicatordomain.AllKinds
	}
	series, err := s.series.Dashboard(ctx, userID, indicatordomain.DefaultPeriod)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}
	byKind := make(map[string]indicatordomain.Series, len(series))
	for _, sr := range series {
		byKind[sr.ID] = sr
	}

	var out []*domain.GeneratedInsight
	for _, k := range kinds {
		sr, ok := byKind[string(k)]
		if !ok || len(sr.HistoricalData) == 0 {
			continue
		}
		g, err := s.ruleInsight(userID, sr)
		if err != nil {
			return out, err
		}
		if err := s.repo.Replace(ctx, g); err != nil {
			return out, fmt.Errorf("store insight for %s: %w", k, err)
		}
		out = append(out, g)
	}
	s.logger.Info("refreshed insights", zap.String("user_id", userID), zap.Int("count", len(out)))
	if len(out) > 0 {
		ids := make([]string, len(out))
		for i, g := range out {
			ids[i] = g.Indicator
		}
		telemetry.EmitAsync(s.events, s.logger,
			telemetry.NewEvent(telemetry.EventInsightsGenerated, "insight-service", userID, map[string]any{"indicators": ids}))
	}
	return out, nil
}

func (s *Service) ruleInsight(userID string, sr indicatordomain.Series) (*domain.GeneratedInsight, error) {
	last := sr.HistoricalData[len(sr.HistoricalData)-1]
	refDate, err := indicatordomain.ParseDate(last.Date)
	if err != nil {
		return nil, fmt.Errorf("reference date for %s: %w", sr.ID, err)
	}
	g := &domain.GeneratedInsight{
		ID:            uuid.New().String(),
		UserID:        userID,
		Indicator:     sr.ID,
		ReferenceDate: refDate,
		CreatedAt:     s.now().UTC(),
	}
	change := sr.MonthlyChange
	switch {
	case math.Abs(change) >= alertThreshold:
		g.Type, g.Severity = domain.TypeAlert, domain.SeverityWarning
		g.Title = s.printer.Sprintf("%s: variação expressiva", sr.ShortName)
		g.Description = s.printer.Sprintf("%s variou %.2f%% no último mês e está em %.2f %s. Movimento acima do usual.",
			sr.Name, change, sr.Value, sr.Unit)
	case change > moveThreshold:
		g.Type, g.Severity = domain.TypeTrend, domain.SeveritySuccess
		g.Title = s.printer.Sprintf("%s em alta", sr.ShortName)
		g.Description = s.printer.Sprintf("%s subiu %.2f%% no último mês, chegando a %.2f %s.",
			sr.Name, change, sr.Value, sr.Unit)
	case change < -moveThreshold:
		g.Type, g.Severity = domain.TypeTrend, domain.SeverityInfo
		g.Title = s.printer.Sprintf("%s em queda", sr.ShortName)
		g.Description = s.printer.Sprintf("%s caiu %.2f%% no último mês, chegando a %.2f %s.",
			sr.Name, math.Abs(change), sr.Value, sr.Unit)
	default:
		g.Type, g.Severity = domain.TypeTrend, domain.SeverityInfo
		g.Title = s.printer.Sprintf("%s estável", sr.ShortName)
		g.Description = s.printer.Sprintf("%s ficou estável no último mês (%.2f%%), em %.2f %s.",
			sr.Name, change, sr.Value, sr.Unit)
	}
	return g, nil
}
