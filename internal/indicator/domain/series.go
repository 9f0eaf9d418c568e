package domain

import (
	"math"
	"sort"
	"time"
)

// Trend is the direction of the latest month-over-month move.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// TrendThreshold is the percent move beyond which a series is rising or falling.
const TrendThreshold = 1.0

// Point is one dated value in a series.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Series is the dashboard card of one indicator. It is also the input of the AI insight summary.
type Series struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	ShortName      string  `json:"shortName"`
	Value          float64 `json:"value"`
	Unit           string  `json:"unit"`
	MonthlyChange  float64 `json:"monthlyChange"`
	AnnualChange   float64 `json:"annualChange"`
	Trend          Trend   `json:"trend"`
	HistoricalData []Point `json:"historicalData"`
}

// TrendOf classifies a percent change with TrendThreshold.
func TrendOf(change float64) Trend {
	switch {
	case change > TrendThreshold:
		return TrendUp
	case change < -TrendThreshold:
		return TrendDown
	default:
		return TrendStable
	}
}

// PercentChange returns (current-base)/|base|*100, or 0 when base is 0.
func PercentChange(current, base float64) float64 {
	if base == 0 {
		return 0
	}
	return (current - base) / math.Abs(base) * 100
}

// BuildSeries turns the readings of one kind into a dashboard series. Readings are sorted by
// reference date (stable, so insertion order breaks ties). The annual change compares the latest
// value with the latest reading dated at least 12 months earlier.
func BuildSeries(kind Kind, readings []Reading) Series {
	meta := MetaFor(kind)
	s := Series{
		ID:             string(kind),
		Name:           meta.Name,
		ShortName:      meta.ShortName,
		Unit:           meta.Unit,
		Trend:          TrendStable,
		HistoricalData: []Point{},
	}
	if len(readings) == 0 {
		return s
	}
	sorted := make([]Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ReferenceDate.Before(sorted[j].ReferenceDate)
	})

	s.HistoricalData = make([]Point, len(sorted))
	for i, r := range sorted {
		s.HistoricalData[i] = Point{Date: r.ReferenceDate.Format(DateLayout), Value: r.Value}
	}
	last := sorted[len(sorted)-1]
	s.Value = last.Value
	if len(sorted) >= 2 {
		s.MonthlyChange = PercentChange(last.Value, sorted[len(sorted)-2].Value)
	}
	yearAgo := last.ReferenceDate.AddDate(-1, 0, 0)
	for i := len(sorted) - 2; i >= 0; i-- {
		if !sorted[i].ReferenceDate.After(yearAgo) {
			s.AnnualChange = PercentChange(last.Value, sorted[i].Value)
			break
		}
	}
	s.Trend = TrendOf(s.MonthlyChange)
	return s
}

// MergeReadings combines the user's readings with the reference readings of the same kinds. On an
// identical kind and reference date the user's reading wins.
func MergeReadings(own, reference []Reading) []Reading {
	type key struct {
		kind Kind
		date time.Time
	}
	seen := make(map[key]bool, len(own))
	out := make([]Reading, 0, len(own)+len(reference))
	for _, r := range own {
		seen[key{r.Kind, r.ReferenceDate}] = true
		out = append(out, r)
	}
	for _, r := range reference {
		if !seen[key{r.Kind, r.ReferenceDate}] {
			out = append(out, r)
		}
	}
	return out
}

// GroupByKind splits readings per kind, preserving order within each group.
func GroupByKind(readings []Reading) map[Kind][]Reading {
	out := make(map[Kind][]Reading)
	for _, r := range readings {
		out[r.Kind] = append(out[r.Kind], r)
	}
	return out
}

// Window returns a copy of s whose historical data starts at since. The computed values are kept.
func (s Series) Window(since time.Time) Series {
	cut := since.Format(DateLayout)
	i := sort.Search(len(s.HistoricalData), func(i int) bool {
		return s.HistoricalData[i].Date >= cut
	})
	out := s
	out.HistoricalData = append([]Point{}, s.HistoricalData[i:]...)
	return out
}
