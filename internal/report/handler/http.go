// Package handler exposes report generation over HTTP (echo).
package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Gelzieny/remix-of-economic-insight/internal/report/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/report/service"
)

// HeaderServiceKey carries the shared key of the scheduler calling the report endpoint.
const HeaderServiceKey = "X-Service-Key"

// Handler serves /api/v1/reports.
type Handler struct {
	svc        *service.Service
	serviceKey string
	logger     *zap.Logger
}

// NewHandler returns a Handler. An empty serviceKey leaves the endpoint open.
func NewHandler(svc *service.Service, serviceKey string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, serviceKey: serviceKey, logger: logger}
}

// RegisterPublic mounts the report route on g. It is guarded by the service key, not a user token.
func (h *Handler) RegisterPublic(g *echo.Group) {
	g.Any("/reports", h.report)
}

type reportRequest struct {
	Mode string `json:"mode"`
}

type failure struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Mode       string `json:"mode"`
	ReportDate string `json:"report_date"`
}

func (h *Handler) report(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return c.JSON(http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed. Use POST."})
	}
	if h.serviceKey != "" {
		got := c.Request().Header.Get(HeaderServiceKey)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.serviceKey)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid service key")
		}
	}

	var req reportRequest
	if c.Request().Body != nil {
		// A missing or malformed body means test mode.
		_ = json.NewDecoder(c.Request().Body).Decode(&req)
	}

	report, err := h.svc.Generate(c.Request().Context(), req.Mode)
	if err != nil {
		h.logger.Error("report generation failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, failure{
			Success:    false,
			Error:      err.Error(),
			Mode:       domain.ModeError,
			ReportDate: time.Now().UTC().Format(domain.TimestampLayout),
		})
	}
	return c.JSON(http.StatusOK, report)
}
