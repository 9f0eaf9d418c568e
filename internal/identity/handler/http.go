// Package handler exposes the auth service over HTTP (echo).
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Gelzieny/remix-of-economic-insight/internal/identity/service"
)

// Handler serves /api/v1/auth/* and /api/v1/me.
type Handler struct {
	auth *service.AuthService
}

// NewHandler returns a Handler. If auth is nil, every route answers 503.
func NewHandler(auth *service.AuthService) *Handler {
	return &Handler{auth: auth}
}

// RegisterPublic mounts the unauthenticated auth routes on g (/api/v1).
func (h *Handler) RegisterPublic(g *echo.Group) {
	a := g.Group("/auth")
	a.POST("/register", h.register)
	a.POST("/login", h.login)
	a.POST("/refresh", h.refresh)
	a.POST("/logout", h.logout)
	a.POST("/forgot", h.forgot)
	a.POST("/reset", h.reset)
}

// RegisterProtected mounts routes that require a Bearer token on g.
func (h *Handler) RegisterProtected(g *echo.Group) {
	g.GET("/me", h.me)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type forgotRequest struct {
	Email string `json:"email"`
}

type resetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// TokenResponse is returned by register, login and refresh.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
}

// ProfileResponse is returned by GET /api/v1/me.
type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Initials  string    `json:"initials"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) register(c echo.Context) error {
	if h.auth == nil {
		return errUnavailable
	}
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.auth.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return authErrorToHTTP(err)
	}
	return c.JSON(http.StatusCreated, toTokenResponse(res))
}

func (h *Handler) login(c echo.Context) error {
	if h.auth == nil {
		return errUnavailable
	}
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return authErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, toTokenResponse(res))
}

func (h *Handler) refresh(c echo.Context) error {
	if h.auth == nil {
		return errUnavailable
	}
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return authErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, toTokenResponse(res))
}

func (h *Handler) logout(c echo.Context) error {
	if h.auth == nil {
		return errUnavailable
	}
	var req refreshRequest
	_ = c.Bind(&req) // body is optional; the Bearer session is used when absent
	if err := h.auth.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return authErrorToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) forgot(c echo.Context) error {
	if h.auth == nil {
		return errUnavailable
	}
	var req forgotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.auth.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return authErrorToHTTP(err)
	}
	return c.JSON(http.StatusAccepted, map[string]bool{"success": true})
}

func (h *Handler) reset(c echo.Context) error {
	if h.auth == nil {
		return errUnavailable
	}
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.auth.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return authErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) me(c echo.Context) error {
	if h.auth == nil {
		return errUnavailable
	}
	p, err := h.auth.Me(c.Request().Context())
	if err != nil {
		return authErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, ProfileResponse{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		Initials:  p.Initials,
		CreatedAt: p.CreatedAt,
	})
}

var errUnavailable = echo.NewHTTPError(http.StatusServiceUnavailable, "auth not configured")

func toTokenResponse(res *service.AuthResult) TokenResponse {
	return TokenResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
		UserID:       res.UserID,
	}
}

func authErrorToHTTP(err error) error {
	switch {
	case errors.Is(err, service.ErrEmailRequired),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidResetToken):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefreshToken),
		errors.Is(err, service.ErrRefreshTokenReuse),
		errors.Is(err, service.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	default:
		return err
	}
}
