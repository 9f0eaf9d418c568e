package domain

import (
	"errors"
	"math"
	"time"
)

// SystemUserID owns the shared reference series. Its readings are read-only for everyone else.
const SystemUserID = "00000000-0000-0000-0000-000000000000"

// DateLayout is the wire format of reference dates.
const DateLayout = "2006-01-02"

// Reading is one data point entered for an indicator.
type Reading struct {
	ID            string
	UserID        string
	Kind          Kind
	Value         float64
	ReferenceDate time.Time
	CreatedAt     time.Time
}

var (
	ErrInvalidValue = errors.New("value must be a finite number")
	ErrMissingDate  = errors.New("reference date is required")
)

// Validate checks the reading before it is stored.
func (r *Reading) Validate() error {
	if !r.Kind.Known() {
		return ErrUnknownKind
	}
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return ErrInvalidValue
	}
	if r.ReferenceDate.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD reference date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
