// Package handler exposes the report subscription over HTTP (echo).
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Gelzieny/remix-of-economic-insight/internal/server/interceptors"
	"github.com/Gelzieny/remix-of-economic-insight/internal/subscriber/service"
)

// Handler serves /api/v1/subscription.
type Handler struct {
	svc *service.Service
}

// NewHandler returns a Handler backed by svc.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterProtected mounts the subscription routes on g.
func (h *Handler) RegisterProtected(g *echo.Group) {
	g.GET("/subscription", h.get)
	g.PUT("/subscription", h.put)
}

// SubscriptionResponse is the user's report opt-in state.
type SubscriptionResponse struct {
	Active bool `json:"active"`
}

type putRequest struct {
	Active *bool `json:"active"`
}

func (h *Handler) get(c echo.Context) error {
	userID, ok := interceptors.GetUserID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	active, err := h.svc.Get(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SubscriptionResponse{Active: active})
}

func (h *Handler) put(c echo.Context) error {
	userID, ok := interceptors.GetUserID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	var req putRequest
	if err := c.Bind(&req); err != nil || req.Active == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "active is required")
	}
	if err := h.svc.SetActive(c.Request().Context(), userID, *req.Active); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, SubscriptionResponse{Active: *req.Active})
}
