package domain

import "time"

// Period is a dashboard time window.
type Period string

const (
	Period3M  Period = "3m"
	Period6M  Period = "6m"
	Period12M Period = "12m"
	Period24M Period = "24m"
	Period5Y  Period = "5y"
)

// DefaultPeriod is used for empty or unknown period strings.
const DefaultPeriod = Period12M

// ParsePeriod returns the period named by s, or DefaultPeriod.
func ParsePeriod(s string) Period {
	switch p := Period(s); p {
	case Period3M, Period6M, Period12M, Period24M, Period5Y:
		return p
	default:
		return DefaultPeriod
	}
}

// Months is the length of the window in months.
func (p Period) Months() int {
	switch p {
	case Period3M:
		return 3
	case Period6M:
		return 6
	case Period24M:
		return 24
	case Period5Y:
		return 60
	default:
		return 12
	}
}

// Since returns the first day included in the window ending at now (date precision, UTC).
func (p Period) Since(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, -p.Months(), 0)
}
