// Package telemetry defines the domain events the service publishes (report generated,
// readings created, insights generated) and the best-effort emitters that carry them.
package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event types published by the API and consumed by the delivery worker.
const (
	EventReportGenerated   = "report.generated"
	EventReadingCreated    = "reading.created"
	EventReadingDeleted    = "reading.deleted"
	EventInsightsGenerated = "insights.generated"
	EventHTTPRequest       = "http.request"
)

// Event is a single domain event. Payload is the event-specific JSON document.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"eventType"`
	UserID    string          `json:"userId,omitempty"`
	Source    string          `json:"source"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewEvent builds an event with a fresh id and the current time. payload is marshaled to JSON;
// a marshal failure leaves Payload empty.
func NewEvent(eventType, source, userID string, payload any) *Event {
	e := &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		UserID:    userID,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			e.Payload = raw
		}
	}
	return e
}

// EventEmitter emits events (to Kafka or OTel Logs). Callers treat it as best-effort.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}

// emitTimeout is the max time allowed for a single async emit.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait after the HTTP server stops before shutting down
// emitters, so in-flight async emits can complete. Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// EmitAsync runs Emit in a goroutine with a short timeout so the caller is not blocked.
// emitter and event may be nil; EmitAsync then returns without starting a goroutine.
// The goroutine uses context.Background() so request cancellation does not abort the emit.
func EmitAsync(emitter EventEmitter, logger *zap.Logger, event *Event) {
	if emitter == nil || event == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		emitCtx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := emitter.Emit(emitCtx, event); err != nil {
			logger.Warn("telemetry: async emit failed", zap.String("event_type", event.Type), zap.Error(err))
		}
	}()
}

// Multi fans an event out to every non-nil emitter and returns the first error.
type Multi []EventEmitter

// Emit implements EventEmitter.
func (m Multi) Emit(ctx context.Context, event *Event) error {
	var first error
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
