// Package domain aggregates reference readings into the macroeconomic report.
package domain

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	indicatordomain "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/domain"
)

// TimestampLayout renders report_date in UTC with millisecond precision, e.g.
// 2025-03-05T10:00:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Report modes.
const (
	ModeTest      = "test"
	ModeScheduled = "scheduled"
	ModeError     = "error"
)

// MessageNoData is returned when there are no readings in the window.
const MessageNoData = "No indicator data found"

// Trend labels of the summary.
const (
	TrendUp     = "alta"
	TrendDown   = "queda"
	TrendStable = "estável"
)

const (
	recordsPerIndicator = 6
	valuePlaces         = 4
	percentPlaces       = 2
	trendThreshold      = 1.0
)

// ParseMode returns test or scheduled; anything else is test.
func ParseMode(s string) string {
	if s == ModeScheduled {
		return ModeScheduled
	}
	return ModeTest
}

// Row is one reading fed to the aggregator.
type Row struct {
	Indicator     string
	Value         float64
	ReferenceDate string
}

// Record is one raw reading in the detailed data.
type Record struct {
	Value         float64 `json:"value"`
	ReferenceDate string  `json:"reference_date"`
}

// SummaryRow is the per-indicator line of the report.
type SummaryRow struct {
	Indicator     string   `json:"indicador"`
	CurrentValue  float64  `json:"valor_atual"`
	Unit          string   `json:"unidade"`
	ReferenceDate string   `json:"data_referencia"`
	MonthlyChange float64  `json:"variacao_mensal_pct"`
	PeriodChange  float64  `json:"variacao_periodo_pct"`
	Trend         string   `json:"tendencia"`
	PreviousValue *float64 `json:"valor_anterior"`
	TotalRecords  int      `json:"total_registros"`
}

// Detail is the raw tail of one indicator.
type Detail struct {
	Name    string   `json:"name"`
	Unit    string   `json:"unit"`
	Records []Record `json:"records"`
}

// Report is the envelope returned to callers and published for delivery.
type Report struct {
	Success         bool              `json:"success"`
	Mode            string            `json:"mode"`
	ReportDate      string            `json:"report_date"`
	ReportTitle     string            `json:"report_title"`
	TotalIndicators int               `json:"total_indicators"`
	Summary         []SummaryRow      `json:"summary"`
	DetailedData    map[string]Detail `json:"detailed_data"`
	// Message is set only when there was no data.
	Message string `json:"-"`
}

type emptyReport struct {
	Success    bool         `json:"success"`
	Mode       string       `json:"mode"`
	Message    string       `json:"message"`
	ReportDate string       `json:"report_date"`
	Indicators []SummaryRow `json:"indicators"`
	Summary    []SummaryRow `json:"summary"`
}

// MarshalJSON renders the no-data report in its reduced shape.
func (r Report) MarshalJSON() ([]byte, error) {
	if r.Message != "" {
		return json.Marshal(emptyReport{
			Success:    r.Success,
			Mode:       r.Mode,
			Message:    r.Message,
			ReportDate: r.ReportDate,
			Indicators: []SummaryRow{},
			Summary:    []SummaryRow{},
		})
	}
	type plain Report
	return json.Marshal(plain(r))
}

// Title is the report title for the given local date.
func Title(now time.Time) string {
	return fmt.Sprintf("Relatório Macroeconômico - %02d/%02d/%04d", now.Day(), int(now.Month()), now.Year())
}

// Build aggregates rows into a report. An empty input yields the no-data report.
func Build(rows []Row, mode string, now time.Time) *Report {
	r := &Report{
		Success:    true,
		Mode:       ParseMode(mode),
		ReportDate: now.UTC().Format(TimestampLayout),
	}
	if len(rows) == 0 {
		r.Message = MessageNoData
		return r
	}
	r.ReportTitle = Title(now)
	r.Summary, r.DetailedData = Aggregate(rows)
	r.TotalIndicators = len(r.Summary)
	return r
}

// Aggregate groups rows by indicator and computes each group's summary line. Summary lines are
// sorted by indicator name with Portuguese collation.
func Aggregate(rows []Row) ([]SummaryRow, map[string]Detail) {
	grouped := make(map[string][]Row)
	var keys []string
	for _, row := range rows {
		if _, ok := grouped[row.Indicator]; !ok {
			keys = append(keys, row.Indicator)
		}
		grouped[row.Indicator] = append(grouped[row.Indicator], row)
	}

	summary := make([]SummaryRow, 0, len(keys))
	details := make(map[string]Detail, len(keys))
	for _, key := range keys {
		data := grouped[key]
		sort.SliceStable(data, func(i, j int) bool { return data[i].ReferenceDate < data[j].ReferenceDate })

		latest := data[len(data)-1]
		first := data[0]
		var previous *Row
		if len(data) > 1 {
			previous = &data[len(data)-2]
		}

		var monthly float64
		if previous != nil {
			monthly = indicatordomain.PercentChange(latest.Value, previous.Value)
		}
		period := indicatordomain.PercentChange(latest.Value, first.Value)

		trend := TrendStable
		if monthly > trendThreshold {
			trend = TrendUp
		} else if monthly < -trendThreshold {
			trend = TrendDown
		}

		meta := indicatordomain.MetaFor(indicatordomain.Kind(key))
		line := SummaryRow{
			Indicator:     meta.Name,
			CurrentValue:  round(latest.Value, valuePlaces),
			Unit:          meta.Unit,
			ReferenceDate: latest.ReferenceDate,
			MonthlyChange: round(monthly, percentPlaces),
			PeriodChange:  round(period, percentPlaces),
			Trend:         trend,
			TotalRecords:  len(data),
		}
		if previous != nil {
			v := round(previous.Value, valuePlaces)
			line.PreviousValue = &v
		}
		summary = append(summary, line)

		tailStart := len(data) - recordsPerIndicator
		if tailStart < 0 {
			tailStart = 0
		}
		records := make([]Record, 0, len(data)-tailStart)
		for _, row := range data[tailStart:] {
			records = append(records, Record{Value: row.Value, ReferenceDate: row.ReferenceDate})
		}
		details[key] = Detail{Name: meta.Name, Unit: meta.Unit, Records: records}
	}

	col := collate.New(language.BrazilianPortuguese)
	sort.SliceStable(summary, func(i, j int) bool {
		return col.CompareString(summary[i].Indicator, summary[j].Indicator) < 0
	})
	return summary, details
}

// round rounds the exact binary value of v half away from zero. 1074 fractional digits hold
// any float64 without loss, so 1.005 (stored as 1.00499999...) rounds down to 1.00.
func round(v float64, places int32) float64 {
	exact := new(big.Float).SetFloat64(v).Text('f', 1074)
	return decimal.RequireFromString(exact).Round(places).InexactFloat64()
}
