// Package handler lets a user page through their own audit trail.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Gelzieny/remix-of-economic-insight/internal/audit/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/server/interceptors"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Lister reads audit logs of one user.
type Lister interface {
	ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error)
}

// Handler serves GET /api/v1/audit.
type Handler struct {
	repo Lister
}

// NewHandler returns a Handler backed by repo.
func NewHandler(repo Lister) *Handler {
	return &Handler{repo: repo}
}

// RegisterProtected mounts the audit route on g.
func (h *Handler) RegisterProtected(g *echo.Group) {
	g.GET("/audit", h.list)
}

// LogResponse is one audit entry.
type LogResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListResponse is a page of entries. NextOffset is 0 when there are no more pages.
type ListResponse struct {
	Logs       []LogResponse `json:"logs"`
	NextOffset int32         `json:"next_offset,omitempty"`
}

func (h *Handler) list(c echo.Context) error {
	userID, ok := interceptors.GetUserID(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	limit, err := intParam(c, "limit", defaultPageSize)
	if err != nil {
		return err
	}
	offset, err := intParam(c, "offset", 0)
	if err != nil {
		return err
	}
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}

	logs, err := h.repo.ListByUser(c.Request().Context(), userID, limit+1, offset)
	if err != nil {
		return err
	}
	resp := ListResponse{Logs: make([]LogResponse, 0, len(logs))}
	if int32(len(logs)) > limit {
		logs = logs[:limit]
		resp.NextOffset = offset + limit
	}
	for _, l := range logs {
		resp.Logs = append(resp.Logs, LogResponse{
			ID: l.ID, Action: l.Action, Resource: l.Resource, IP: l.IP, Metadata: l.Metadata, CreatedAt: l.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func intParam(c echo.Context, name string, def int32) (int32, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return int32(v), nil
}
