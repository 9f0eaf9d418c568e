// Package handler serves the readiness check used by Kubernetes, load balancers and CI.
package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Pinger checks database connectivity (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks that the policy engine is usable (e.g. the OPA evaluator).
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

const (
	StatusServing    = "SERVING"
	StatusNotServing = "NOT_SERVING"
)

// Handler reports service health. Nil dependencies are skipped.
type Handler struct {
	pinger Pinger
	policy PolicyChecker
}

// NewHandler returns a health Handler.
func NewHandler(pinger Pinger, policy PolicyChecker) *Handler {
	return &Handler{pinger: pinger, policy: policy}
}

// Register mounts GET /health on e.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.check)
}

// Response is the health payload.
type Response struct {
	Status string `json:"status"`
}

func (h *Handler) check(c echo.Context) error {
	if !h.serving(c.Request().Context()) {
		return c.JSON(http.StatusServiceUnavailable, Response{Status: StatusNotServing})
	}
	return c.JSON(http.StatusOK, Response{Status: StatusServing})
}

func (h *Handler) serving(ctx context.Context) bool {
	if h.pinger != nil {
		if err := h.pinger.PingContext(ctx); err != nil {
			return false
		}
	}
	if h.policy != nil {
		if err := h.policy.HealthCheck(ctx); err != nil {
			return false
		}
	}
	return true
}
