// Package handler exposes dashboard preferences over HTTP (echo).
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	indicatordomain "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/preference/service"
	"github.com/Gelzieny/remix-of-economic-insight/internal/server/interceptors"
)

// Handler serves /api/v1/preferences.
type Handler struct {
	svc *service.Service
}

// NewHandler returns a Handler backed by svc.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterProtected mounts the preference routes on g.
func (h *Handler) RegisterProtected(g *echo.Group) {
	g.GET("/preferences", h.get)
	g.POST("/preferences/toggle", h.toggle)
	g.POST("/preferences/all", h.selectAll)
}

// PreferencesResponse mirrors the dashboard's preference state.
type PreferencesResponse struct {
	SelectedIndicators   []string `json:"selectedIndicators"`
	AllIndicators        []string `json:"allIndicators"`
	HasCustomPreferences bool     `json:"hasCustomPreferences"`
}

type toggleRequest struct {
	Indicator string `json:"indicator"`
}

func (h *Handler) get(c echo.Context) error {
	userID, ok := interceptors.GetUserID(c.Request().Context())
	if !ok {
		return errUnauthenticated
	}
	p, err := h.svc.Get(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(p))
}

func (h *Handler) toggle(c echo.Context) error {
	userID, ok := interceptors.GetUserID(c.Request().Context())
	if !ok {
		return errUnauthenticated
	}
	var req toggleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	kind, err := indicatordomain.ParseKind(req.Indicator)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Toggle(c.Request().Context(), userID, kind)
	if err != nil {
		if errors.Is(err, indicatordomain.ErrUnknownKind) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, toResponse(p))
}

func (h *Handler) selectAll(c echo.Context) error {
	userID, ok := interceptors.GetUserID(c.Request().Context())
	if !ok {
		return errUnauthenticated
	}
	p, err := h.svc.SelectAll(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResponse(p))
}

var errUnauthenticated = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")

func toResponse(p *service.Preferences) PreferencesResponse {
	selected := make([]string, len(p.Selected))
	for i, k := range p.Selected {
		selected[i] = string(k)
	}
	return PreferencesResponse{
		SelectedIndicators:   selected,
		AllIndicators:        indicatordomain.KindStrings(),
		HasCustomPreferences: p.Custom,
	}
}
