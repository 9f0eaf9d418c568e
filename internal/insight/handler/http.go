// Package handler exposes AI and stored insights over HTTP (echo).
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	indicatordomain "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/insight/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/insight/service"
	"github.com/Gelzieny/remix-of-economic-insight/internal/server/interceptors"
)

// Handler serves /api/v1/insights/*.
type Handler struct {
	generator *service.Generator
	insights  *service.Service
	logger    *zap.Logger
}

// NewHandler returns a Handler.
func NewHandler(generator *service.Generator, insights *service.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{generator: generator, insights: insights, logger: logger}
}

// RegisterProtected mounts the insight routes on g.
func (h *Handler) RegisterProtected(g *echo.Group) {
	g.POST("/insights/ai", h.generate)
	g.GET("/insights", h.list)
	g.POST("/insights/refresh", h.refresh)
	g.DELETE("/insights/:id", h.delete)
}

// InsightResponse is the JSON shape of a stored insight.
type InsightResponse struct {
	ID            string    `json:"id"`
	Indicator     string    `json:"indicator"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Severity      string    `json:"severity"`
	InsightType   string    `json:"insight_type"`
	ReferenceDate string    `json:"reference_date"`
	CreatedAt     time.Time `json:"created_at"`
}

type refreshRequest struct {
	Indicator string `json:"indicator"`
}

type generateError struct {
	Error    string             `json:"error"`
	Insights []domain.AIInsight `json:"insights"`
}

func (h *Handler) generate(c echo.Context) error {
	userID, ok := interceptors.GetUserID(c.Request().Context())
	if !ok {
		return errUnauthenticated
	}
	var req service.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, generateError{Error: "invalid request body", Insights: []domain.AIInsight{}})
	}
	res, err := h.generator.Generate(c.Request().Context(), userID, req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrRateLimited) {
			status = http.StatusTooManyRequests
		}
		h.logger.Error("generate AI insights", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(status, generateError{Error: err.Error(), Insights: []domain.AIInsight{}})
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) list(c echo.Context) error {
	userID, ok := interceptors.GetUserID(c.Request().Context())
	if !ok {
		return errUnauthenticated
	}
	list, err := h.insights.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponses(list))
}

func (h *Handler) refresh(c echo.Context) error {
	userID, ok := interceptors.GetUserID(c.Request().Context())
	if !ok {
		return errUnauthenticated
	}
	var req refreshRequest
	_ = c.Bind(&req) // empty body refreshes every indicator
	var kinds []indicatordomain.Kind
	if req.Indicator != "" {
		k, err := indicatordomain.ParseKind(req.Indicator)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		kinds = []indicatordomain.Kind{k}
	}
	out, err := h.insights.Refresh(c.Request().Context(), userID, kinds)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"insights": toResponses(out)})
}

func (h *Handler) delete(c echo.Context) error {
	userID, ok := interceptors.GetUserID(c.Request().Context())
	if !ok {
		return errUnauthenticated
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, service.ErrNotFound.Error())
	}
	err := h.insights.Delete(c.Request().Context(), userID, id)
	switch {
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case err != nil:
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

var errUnauthenticated = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")

func toResponses(list []*domain.GeneratedInsight) []InsightResponse {
	out := make([]InsightResponse, len(list))
	for i, g := range list {
		out[i] = InsightResponse{
			ID:            g.ID,
			Indicator:     g.Indicator,
			Title:         g.Title,
			Description:   g.Description,
			Severity:      string(g.Severity),
			InsightType:   string(g.Type),
			ReferenceDate: g.ReferenceDate.Format(indicatordomain.DateLayout),
			CreatedAt:     g.CreatedAt,
		}
	}
	return out
}
