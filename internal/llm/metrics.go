package llm

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts provider calls and their latency.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the LLM collectors and registers them with reg when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "econ",
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "LLM completion requests by model and outcome.",
		}, []string{"model", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "econ",
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "LLM completion latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		}, []string{"model"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

type instrumented struct {
	next    Client
	metrics *Metrics
}

// Instrument wraps c so each Complete call is counted and timed.
func Instrument(c Client, m *Metrics) Client {
	if c == nil || m == nil {
		return c
	}
	return &instrumented{next: c, metrics: m}
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := i.next.Complete(ctx, req)
	model := i.next.Name()
	i.metrics.duration.WithLabelValues(model).Observe(time.Since(start).Seconds())
	outcome := "ok"
	switch {
	case err == ErrEmptyResponse:
		outcome = "empty"
	case err != nil:
		outcome = "error"
	}
	i.metrics.requests.WithLabelValues(model, outcome).Inc()
	return out, err
}
