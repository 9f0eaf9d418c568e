package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	indicatordomain "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/indicator/repository"
	"github.com/Gelzieny/remix-of-economic-insight/internal/report/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/telemetry"
)

// windowMonths is how far back the report reads the reference series.
const windowMonths = 24

// eventSource names this service in published events.
const eventSource = "report-service"

// ReadingLister reads readings of one user.
type ReadingLister interface {
	ListByUser(ctx context.Context, userID string, f repository.Filter) ([]*indicatordomain.Reading, error)
}

// Service builds the macroeconomic report from the reference series.
type Service struct {
	readings  ReadingLister
	publisher telemetry.EventEmitter
	logger    *zap.Logger
	location  *time.Location
	now       func() time.Time
}

// NewService returns the report service. publisher may be nil, in which case scheduled reports
// are built but not published.
func NewService(readings ReadingLister, publisher telemetry.EventEmitter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.UTC
	}
	return &Service{readings: readings, publisher: publisher, logger: logger, location: loc, now: time.Now}
}

// Generate builds the report for mode. Scheduled reports are published for delivery; a publish
// failure fails the call so the scheduler can retry.
func (s *Service) Generate(ctx context.Context, mode string) (*domain.Report, error) {
	mode = domain.ParseMode(mode)
	now := s.now().In(s.location)
	y, m, d := now.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, -windowMonths, 0)

	list, err := s.readings.ListByUser(ctx, indicatordomain.SystemUserID, repository.Filter{Since: cutoff})
	if err != nil {
		return nil, fmt.Errorf("Database error: %w", err)
	}
	rows := make([]domain.Row, 0, len(list))
	for _, r := range list {
		rows = append(rows, domain.Row{
			Indicator:     string(r.Kind),
			Value:         r.Value,
			ReferenceDate: r.ReferenceDate.Format(indicatordomain.DateLayout),
		})
	}

	report := domain.Build(rows, mode, now)
	if report.Message != "" {
		return report, nil
	}
	s.logger.Info("Report generated",
		zap.Int("indicators", report.TotalIndicators),
		zap.String("mode", report.Mode),
	)

	if mode == domain.ModeScheduled && s.publisher != nil {
		ev := telemetry.NewEvent(telemetry.EventReportGenerated, eventSource, "", report)
		if err := s.publisher.Emit(ctx, ev); err != nil {
			return nil, fmt.Errorf("publish report: %w", err)
		}
		s.logger.Info("report published", zap.String("event_id", ev.ID))
	}
	return report, nil
}
