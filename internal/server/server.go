// Package server builds the echo HTTP server: middleware chain, error rendering and route groups.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Gelzieny/remix-of-economic-insight/internal/audit"
	healthhandler "github.com/Gelzieny/remix-of-economic-insight/internal/health/handler"
	"github.com/Gelzieny/remix-of-economic-insight/internal/security"
	"github.com/Gelzieny/remix-of-economic-insight/internal/server/interceptors"
	"github.com/Gelzieny/remix-of-economic-insight/internal/telemetry"
)

// APIPrefix is the version prefix of every JSON route.
const APIPrefix = "/api/v1"

// PublicRoutes is implemented by handlers with unauthenticated routes.
type PublicRoutes interface {
	RegisterPublic(g *echo.Group)
}

// ProtectedRoutes is implemented by handlers whose routes require a Bearer token.
type ProtectedRoutes interface {
	RegisterProtected(g *echo.Group)
}

// Deps holds the server's collaborators. Only Tokens is required.
type Deps struct {
	Tokens *security.TokenProvider
	// Sessions, when set, rejects access tokens whose session is revoked or expired.
	Sessions interceptors.SessionGetter
	// Audit records authenticated requests. If nil, nothing is audited.
	Audit audit.AuditLogger
	// Events receives an http.request event per request. If nil, no events are emitted.
	Events telemetry.EventEmitter
	// TracerProvider and Meter enable per-request spans and request metrics.
	TracerProvider trace.TracerProvider
	Meter          metric.Meter
	// Gatherer backs GET /metrics; defaults to the Prometheus default registry.
	Gatherer    prometheus.Gatherer
	Health      *healthhandler.Handler
	CORSOrigins []string
	Public      []PublicRoutes
	Protected   []ProtectedRoutes
	Logger      *zap.Logger
}

// telemetrySkip lists routes that are not emitted as events.
var telemetrySkip = map[string]bool{
	"GET /health":  true,
	"GET /metrics": true,
}

// New returns a configured echo instance with all routes registered.
func New(deps Deps) (*echo.Echo, error) {
	if deps.Tokens == nil {
		return nil, errors.New("server: token provider is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: deps.CORSOrigins,
		AllowHeaders: []string{"authorization", "x-client-info", "apikey", "content-type"},
	}))
	e.Use(interceptors.ClientIPMiddleware())
	if deps.TracerProvider != nil {
		e.Use(interceptors.Tracing(deps.TracerProvider))
	}
	if deps.Meter != nil {
		mw, err := interceptors.Metrics(deps.Meter)
		if err != nil {
			return nil, fmt.Errorf("server: request metrics: %w", err)
		}
		e.Use(mw)
	}
	e.Use(requestLogger(logger))
	e.Use(interceptors.Telemetry(deps.Events, logger, telemetrySkip))

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	if deps.Health != nil {
		deps.Health.Register(e)
	}

	public := e.Group(APIPrefix, interceptors.Auth(deps.Tokens, deps.Sessions, false))
	for _, h := range deps.Public {
		h.RegisterPublic(public)
	}
	protected := e.Group(APIPrefix,
		interceptors.Auth(deps.Tokens, deps.Sessions, true),
		interceptors.Audit(deps.Audit, nil),
	)
	for _, h := range deps.Protected {
		h.RegisterProtected(protected)
	}
	return e, nil
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return nil
		}
	}
}

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// errorHandler renders errors as {"error": "..."}. Non-HTTP errors become 500 and are logged.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		} else {
			logger.Error("unhandled request error",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err))
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, ErrorResponse{Error: msg})
		}
		if err != nil {
			logger.Warn("write error response", zap.Error(err))
		}
	}
}
