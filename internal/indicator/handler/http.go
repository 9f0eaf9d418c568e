// Package handler exposes indicator readings and the dashboard over HTTP (echo).
package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Gelzieny/remix-of-economic-insight/internal/indicator/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/indicator/service"
	"github.com/Gelzieny/remix-of-economic-insight/internal/server/interceptors"
)

// Handler serves /api/v1/indicators and /api/v1/dashboard.
type Handler struct {
	svc *service.Service
}

// NewHandler returns a Handler backed by svc.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterProtected mounts the indicator routes on g. All of them need an authenticated user.
func (h *Handler) RegisterProtected(g *echo.Group) {
	g.GET("/indicators", h.list)
	g.POST("/indicators", h.create)
	g.DELETE("/indicators/:id", h.delete)
	g.GET("/dashboard", h.dashboard)
}

type createRequest struct {
	Indicator     string   `json:"indicator"`
	Value         *float64 `json:"value"`
	ReferenceDate string   `json:"reference_date"`
}

// ReadingResponse is the JSON shape of one stored reading.
type ReadingResponse struct {
	ID            string    `json:"id"`
	Indicator     string    `json:"indicator"`
	Value         float64   `json:"value"`
	ReferenceDate string    `json:"reference_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// DashboardResponse carries one series per indicator with data in the period.
type DashboardResponse struct {
	Period     string          `json:"period"`
	Indicators []domain.Series `json:"indicators"`
}

func (h *Handler) list(c echo.Context) error {
	userID, ok := interceptors.GetUserID(c.Request().Context())
	if !ok {
		return errUnauthenticated
	}
	var f service.ListFilter
	if raw := c.QueryParam("indicator"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			k, err := domain.ParseKind(s)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "unknown indicator: "+strings.TrimSpace(s))
			}
			f.Kinds = append(f.Kinds, k)
		}
	}
	if raw := c.QueryParam("since"); raw != "" {
		since, err := domain.ParseDate(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "since must be YYYY-MM-DD")
		}
		f.Since = since
	}
	list, err := h.svc.List(c.Request().Context(), userID, f)
	if err != nil {
		return err
	}
	out := make([]ReadingResponse, len(list))
	for i, r := range list {
		out[i] = toReadingResponse(r)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) create(c echo.Context) error {
	userID, ok := interceptors.GetUserID(c.Request().Context())
	if !ok {
		return errUnauthenticated
	}
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	kind, err := domain.ParseKind(req.Indicator)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Value == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "value is required")
	}
	date, err := domain.ParseDate(req.ReferenceDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "reference_date must be YYYY-MM-DD")
	}
	r, err := h.svc.Create(c.Request().Context(), userID, kind, *req.Value, date)
	if err != nil {
		return indicatorErrorToHTTP(err)
	}
	return c.JSON(http.StatusCreated, toReadingResponse(r))
}

func (h *Handler) delete(c echo.Context) error {
	userID, ok := interceptors.GetUserID(c.Request().Context())
	if !ok {
		return errUnauthenticated
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return indicatorErrorToHTTP(service.ErrNotFound)
	}
	if err := h.svc.Delete(c.Request().Context(), userID, id); err != nil {
		return indicatorErrorToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) dashboard(c echo.Context) error {
	userID, ok := interceptors.GetUserID(c.Request().Context())
	if !ok {
		return errUnauthenticated
	}
	period := domain.ParsePeriod(c.QueryParam("period"))
	series, err := h.svc.Dashboard(c.Request().Context(), userID, period)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DashboardResponse{Period: string(period), Indicators: series})
}

var errUnauthenticated = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")

func toReadingResponse(r *domain.Reading) ReadingResponse {
	return ReadingResponse{
		ID:            r.ID,
		Indicator:     string(r.Kind),
		Value:         r.Value,
		ReferenceDate: r.ReferenceDate.Format(domain.DateLayout),
		CreatedAt:     r.CreatedAt,
	}
}

func indicatorErrorToHTTP(err error) error {
	switch {
	case errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, domain.ErrInvalidValue),
		errors.Is(err, domain.ErrMissingDate):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return err
	}
}
