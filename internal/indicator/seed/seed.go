// Package seed generates the monthly reference series owned by the system user. The series is
// synthetic: a drifting base with a yearly cycle, deterministic for a given end month.
package seed

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Gelzieny/remix-of-economic-insight/internal/indicator/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/indicator/repository"
)

// DefaultMonths is how much history Run writes when months <= 0.
const DefaultMonths = 36

type profile struct {
	base      float64
	drift     float64 // total change over the window
	amplitude float64 // yearly cycle
	phase     float64
	places    int32
}

var profiles = map[domain.Kind]profile{
	domain.KindIPCA:             {base: 5.8, drift: -1.6, amplitude: 0.35, phase: 0.0, places: 2},
	domain.KindSelic:            {base: 13.75, drift: -3.0, amplitude: 0.25, phase: 1.2, places: 2},
	domain.KindIGPM:             {base: 4.1, drift: -2.3, amplitude: 0.9, phase: 0.6, places: 2},
	domain.KindPIB:              {base: 2.2, drift: 0.9, amplitude: 0.4, phase: 2.1, places: 1},
	domain.KindDolar:            {base: 5.05, drift: 0.55, amplitude: 0.12, phase: 0.3, places: 4},
	domain.KindBalancaComercial: {base: 6.8, drift: 1.9, amplitude: 2.1, phase: 1.7, places: 1},
	domain.KindDesemprego:       {base: 9.1, drift: -2.4, amplitude: 0.45, phase: 2.8, places: 1},
}

// ReferenceSeries returns months monthly readings per kind, dated on the first day of each month
// and ending with the month of end.
func ReferenceSeries(end time.Time, months int) []*domain.Reading {
	if months <= 0 {
		months = DefaultMonths
	}
	y, m, _ := end.UTC().Date()
	last := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	created := end.UTC()

	span := float64(months - 1)
	if span == 0 {
		span = 1
	}
	out := make([]*domain.Reading, 0, months*len(domain.AllKinds))
	for _, k := range domain.AllKinds {
		p := profiles[k]
		for i := 0; i < months; i++ {
			v := p.base + p.drift*float64(i)/span + p.amplitude*math.Sin(2*math.Pi*float64(i)/12+p.phase)
			value, _ := decimal.NewFromFloat(v).Round(p.places).Float64()
			out = append(out, &domain.Reading{
				ID:            uuid.New().String(),
				UserID:        domain.SystemUserID,
				Kind:          k,
				Value:         value,
				ReferenceDate: last.AddDate(0, i-months+1, 0),
				CreatedAt:     created,
			})
		}
	}
	return out
}

// Store is the part of the reading repository Run needs.
type Store interface {
	ListByUser(ctx context.Context, userID string, f repository.Filter) ([]*domain.Reading, error)
	Create(ctx context.Context, r *domain.Reading) error
}

// Run writes the reference series ending at now, skipping kind and date pairs that already exist.
// It returns the number of readings inserted.
func Run(ctx context.Context, store Store, now time.Time, months int) (int, error) {
	series := ReferenceSeries(now, months)
	if len(series) == 0 {
		return 0, nil
	}
	existing, err := store.ListByUser(ctx, domain.SystemUserID, repository.Filter{Since: series[0].ReferenceDate})
	if err != nil {
		return 0, fmt.Errorf("list reference readings: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[key(r)] = true
	}
	inserted := 0
	for _, r := range series {
		if seen[key(r)] {
			continue
		}
		if err := store.Create(ctx, r); err != nil {
			return inserted, fmt.Errorf("create %s %s: %w", r.Kind, r.ReferenceDate.Format(domain.DateLayout), err)
		}
		inserted++
	}
	return inserted, nil
}

func key(r *domain.Reading) string {
	return string(r.Kind) + "|" + r.ReferenceDate.Format(domain.DateLayout)
}
