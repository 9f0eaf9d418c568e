// Package domain holds AI and stored insight types and the numeric summary fed to the model.
package domain

import "time"

// Severity of an insight.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
)

// Type of an insight.
type Type string

const (
	TypeTrend       Type = "trend"
	TypeAlert       Type = "alert"
	TypeCorrelation Type = "correlation"
)

// AIInsight is one model-generated insight as returned to the dashboard.
type AIInsight struct {
	ID          string   `json:"id"`
	Message     string   `json:"message"`
	Type        Type     `json:"type"`
	Severity    Severity `json:"severity"`
	IndicatorID string   `json:"indicatorId"`
	Date        string   `json:"date"`
}

// GeneratedInsight is a stored, rule-based insight.
type GeneratedInsight struct {
	ID            string
	UserID        string
	Indicator     string
	Title         string
	Description   string
	Severity      Severity
	Type          Type
	ReferenceDate time.Time
	CreatedAt     time.Time
}
