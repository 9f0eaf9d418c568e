package domain

import (
	"math"
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"ipca", " SELIC ", "balanca_comercial"} {
		if _, err := ParseKind(s); err != nil {
			t.Errorf("ParseKind(%q): %v", s, err)
		}
	}
	if _, err := ParseKind("bitcoin"); err != ErrUnknownKind {
		t.Errorf("ParseKind(bitcoin) err = %v, want ErrUnknownKind", err)
	}
}

func TestMetaFor_Unknown(t *testing.T) {
	m := MetaFor(Kind("cdi"))
	if m.Name != "cdi" || m.ShortName != "cdi" || m.Unit != "" {
		t.Errorf("MetaFor(cdi) = %+v", m)
	}
	if MetaFor(KindDolar).Unit != "R$" {
		t.Errorf("dolar unit = %q", MetaFor(KindDolar).Unit)
	}
}

func TestKindStrings_Order(t *testing.T) {
	got := KindStrings()
	want := []string{"ipca", "selic", "igpm", "pib", "dolar", "balanca_comercial", "desemprego"}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("KindStrings[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReading_Validate(t *testing.T) {
	ok := Reading{Kind: KindIPCA, Value: 4.5, ReferenceDate: day("2025-01-01")}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	tests := []struct {
		name string
		r    Reading
		want error
	}{
		{"unknown kind", Reading{Kind: "x", Value: 1, ReferenceDate: day("2025-01-01")}, ErrUnknownKind},
		{"nan", Reading{Kind: KindIPCA, Value: math.NaN(), ReferenceDate: day("2025-01-01")}, ErrInvalidValue},
		{"inf", Reading{Kind: KindIPCA, Value: math.Inf(1), ReferenceDate: day("2025-01-01")}, ErrInvalidValue},
		{"no date", Reading{Kind: KindIPCA, Value: 1}, ErrMissingDate},
	}
	for _, tt := range tests {
		if err := tt.r.Validate(); err != tt.want {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	if ParsePeriod("5y").Months() != 60 {
		t.Error("5y should be 60 months")
	}
	if ParsePeriod("3m").Months() != 3 {
		t.Error("3m should be 3 months")
	}
	if ParsePeriod("") != DefaultPeriod || ParsePeriod("1w") != DefaultPeriod {
		t.Error("unknown periods should fall back to 12m")
	}
	now := time.Date(2025, 6, 15, 13, 45, 0, 0, time.UTC)
	if got := Period6M.Since(now); !got.Equal(day("2024-12-15")) {
		t.Errorf("Since = %v", got)
	}
}

func TestPercentChange(t *testing.T) {
	if got := PercentChange(110, 100); math.Abs(got-10) > 1e-9 {
		t.Errorf("PercentChange(110,100) = %v", got)
	}
	if got := PercentChange(-5, -10); math.Abs(got-50) > 1e-9 {
		t.Errorf("PercentChange(-5,-10) = %v, want 50", got)
	}
	if got := PercentChange(5, 0); got != 0 {
		t.Errorf("PercentChange(5,0) = %v, want 0", got)
	}
}

func TestTrendOf(t *testing.T) {
	if TrendOf(1.01) != TrendUp || TrendOf(-1.01) != TrendDown || TrendOf(1) != TrendStable || TrendOf(-1) != TrendStable {
		t.Error("TrendOf threshold mismatch")
	}
}

func TestBuildSeries_Empty(t *testing.T) {
	s := BuildSeries(KindSelic, nil)
	if s.ID != "selic" || s.Name != "Taxa Selic" || s.Trend != TrendStable {
		t.Errorf("series = %+v", s)
	}
	if s.HistoricalData == nil || len(s.HistoricalData) != 0 {
		t.Errorf("HistoricalData = %v, want empty non-nil", s.HistoricalData)
	}
}

func TestBuildSeries(t *testing.T) {
	readings := []Reading{
		{Kind: KindIPCA, Value: 5, ReferenceDate: day("2025-03-01")},
		{Kind: KindIPCA, Value: 4, ReferenceDate: day("2024-02-01")},
		{Kind: KindIPCA, Value: 4.5, ReferenceDate: day("2024-06-01")},
		{Kind: KindIPCA, Value: 4.8, ReferenceDate: day("2025-02-01")},
	}
	s := BuildSeries(KindIPCA, readings)
	if s.Value != 5 {
		t.Errorf("Value = %v, want 5", s.Value)
	}
	if len(s.HistoricalData) != 4 || s.HistoricalData[0].Date != "2024-02-01" || s.HistoricalData[3].Date != "2025-03-01" {
		t.Errorf("HistoricalData = %v", s.HistoricalData)
	}
	wantMonthly := (5 - 4.8) / 4.8 * 100
	if math.Abs(s.MonthlyChange-wantMonthly) > 1e-9 {
		t.Errorf("MonthlyChange = %v, want %v", s.MonthlyChange, wantMonthly)
	}
	// 2024-02-01 is the latest reading at least a year before 2025-03-01.
	if math.Abs(s.AnnualChange-25) > 1e-9 {
		t.Errorf("AnnualChange = %v, want 25", s.AnnualChange)
	}
	if s.Trend != TrendUp {
		t.Errorf("Trend = %v, want up", s.Trend)
	}
	if readings[0].Value != 5 {
		t.Error("BuildSeries must not reorder the input")
	}
}

func TestBuildSeries_NoYearOldReading(t *testing.T) {
	s := BuildSeries(KindDolar, []Reading{
		{Kind: KindDolar, Value: 5.0, ReferenceDate: day("2025-01-01")},
		{Kind: KindDolar, Value: 4.9, ReferenceDate: day("2025-02-01")},
	})
	if s.AnnualChange != 0 {
		t.Errorf("AnnualChange = %v, want 0", s.AnnualChange)
	}
	if s.Trend != TrendDown {
		t.Errorf("Trend = %v, want down", s.Trend)
	}
}

func TestMergeReadings_UserWins(t *testing.T) {
	own := []Reading{{ID: "mine", Kind: KindSelic, Value: 11, ReferenceDate: day("2025-01-01")}}
	ref := []Reading{
		{ID: "sys1", Kind: KindSelic, Value: 10.5, ReferenceDate: day("2025-01-01")},
		{ID: "sys2", Kind: KindSelic, Value: 10.75, ReferenceDate: day("2025-02-01")},
		{ID: "sys3", Kind: KindIPCA, Value: 4, ReferenceDate: day("2025-01-01")},
	}
	merged := MergeReadings(own, ref)
	if len(merged) != 3 {
		t.Fatalf("len = %d, want 3", len(merged))
	}
	for _, r := range merged {
		if r.ID == "sys1" {
			t.Error("reference reading should be replaced by user reading")
		}
	}
	groups := GroupByKind(merged)
	if len(groups[KindSelic]) != 2 || len(groups[KindIPCA]) != 1 {
		t.Errorf("groups = %v", groups)
	}
}

func TestSeries_Window(t *testing.T) {
	s := Series{Value: 3, HistoricalData: []Point{{"2024-01-01", 1}, {"2024-06-01", 2}, {"2025-01-01", 3}}}
	w := s.Window(day("2024-06-01"))
	if len(w.HistoricalData) != 2 || w.HistoricalData[0].Date != "2024-06-01" {
		t.Errorf("Window = %v", w.HistoricalData)
	}
	if w.Value != 3 || len(s.HistoricalData) != 3 {
		t.Error("Window must keep values and not mutate the source")
	}
	if got := s.Window(day("2026-01-01")); len(got.HistoricalData) != 0 {
		t.Errorf("future window = %v", got.HistoricalData)
	}
}
