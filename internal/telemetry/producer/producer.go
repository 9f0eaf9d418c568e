// Package producer publishes domain events to Kafka and reads them back for the worker.
package producer

import (
	"context"

	"github.com/Gelzieny/remix-of-economic-insight/internal/telemetry"
)

// Producer emits events. Callers use it best-effort: log and ignore errors.
type Producer interface {
	// Emit sends a single event. Implementations may block briefly; call from a goroutine if needed.
	Emit(ctx context.Context, event *telemetry.Event) error
	// Close releases resources. Safe to call if already closed.
	Close() error
}
