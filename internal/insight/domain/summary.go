package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	indicatordomain "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/domain"
)

const (
	summaryWindow   = 12
	shortTermWindow = 3
	recentPoints    = 6
	// shortTermThreshold is the percent move between the last two short windows that counts as
	// accelerating or decelerating.
	shortTermThreshold = 1.0
)

// Short-term trend labels.
const (
	ShortTermAccelerating = "acelerando"
	ShortTermDecelerating = "desacelerando"
	ShortTermStable       = "estável"
)

// Summary is the numeric digest of one series that the model sees.
type Summary struct {
	Name          string
	ShortName     string
	Value         float64
	Unit          string
	MonthlyChange float64
	PeriodChange  float64
	ShortTerm     float64
	Volatility    float64
	Recent        []indicatordomain.Point
}

// ShortTermLabel classifies ShortTerm.
func (s Summary) ShortTermLabel() string {
	switch {
	case s.ShortTerm > shortTermThreshold:
		return ShortTermAccelerating
	case s.ShortTerm < -shortTermThreshold:
		return ShortTermDecelerating
	default:
		return ShortTermStable
	}
}

// Summarize digests the last 12 points of the series. With no points the current value stands in
// for first and last.
func Summarize(s indicatordomain.Series) Summary {
	data := s.HistoricalData
	if len(data) > summaryWindow {
		data = data[len(data)-summaryWindow:]
	}
	out := Summary{
		Name:          s.Name,
		ShortName:     s.ShortName,
		Value:         s.Value,
		Unit:          s.Unit,
		MonthlyChange: s.MonthlyChange,
	}

	first, last := s.Value, s.Value
	if len(data) > 0 {
		first, last = data[0].Value, data[len(data)-1].Value
	}
	if first != 0 {
		out.PeriodChange = (last - first) / first * 100
	}

	out.Volatility = stddev(data)

	recent := tail(data, shortTermWindow)
	var prev []indicatordomain.Point
	if len(data) > shortTermWindow {
		start := len(data) - 2*shortTermWindow
		if start < 0 {
			start = 0
		}
		prev = data[start : len(data)-shortTermWindow]
	}
	recentAvg, prevAvg := mean(recent), mean(prev)
	if prevAvg != 0 {
		out.ShortTerm = (recentAvg - prevAvg) / prevAvg * 100
	}

	out.Recent = append([]indicatordomain.Point{}, tail(data, recentPoints)...)
	return out
}

// Render formats the summary block of one indicator.
func (s Summary) Render(period string) string {
	recent := make([]string, len(s.Recent))
	for i, p := range s.Recent {
		recent[i] = p.Date + ": " + fixed2(p.Value)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n**%s (%s)**\n", s.ShortName, s.Name)
	fmt.Fprintf(&b, "- Valor atual: %s %s\n", fixed2(s.Value), s.Unit)
	fmt.Fprintf(&b, "- Variação mensal: %s%%\n", fixed2(s.MonthlyChange))
	fmt.Fprintf(&b, "- Variação no período (%s): %s%%\n", period, fixed2(s.PeriodChange))
	fmt.Fprintf(&b, "- Tendência curto prazo: %s\n", s.ShortTermLabel())
	fmt.Fprintf(&b, "- Volatilidade: %s\n", fixed2(s.Volatility))
	fmt.Fprintf(&b, "- Últimos dados: %s\n", strings.Join(recent, ", "))
	return b.String()
}

func fixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func tail(data []indicatordomain.Point, n int) []indicatordomain.Point {
	if len(data) <= n {
		return data
	}
	return data[len(data)-n:]
}

func mean(data []indicatordomain.Point) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, p := range data {
		sum += p.Value
	}
	return sum / float64(len(data))
}

// stddev is the population standard deviation; 0 for no points.
func stddev(data []indicatordomain.Point) float64 {
	if len(data) == 0 {
		return 0
	}
	m := mean(data)
	var acc float64
	for _, p := range data {
		acc += (p.Value - m) * (p.Value - m)
	}
	return math.Sqrt(acc / float64(len(data)))
}
