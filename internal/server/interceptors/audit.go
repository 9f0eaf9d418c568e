package interceptors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Gelzieny/remix-of-economic-insight/internal/audit"
)

// ClientIPMiddleware stores echo's resolved client IP (X-Forwarded-For, X-Real-IP, then the peer)
// in the request context for ClientIP.
func ClientIPMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := WithClientIP(c.Request().Context(), c.RealIP())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

type auditMetadata struct {
	Status int `json:"status"`
}

// readOnlyMethods are never audited.
var readOnlyMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// Audit returns middleware that records an audit log entry after each authenticated mutating
// request. skipRoutes holds further "METHOD /route/template" keys that are not audited.
// Anonymous requests are not audited here; auth code paths log their own events.
func Audit(logger audit.AuditLogger, skipRoutes map[string]bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if logger == nil {
				return err
			}
			method := c.Request().Method
			route := c.Path()
			if readOnlyMethods[method] || skipRoutes[method+" "+route] {
				return err
			}
			userID, ok := GetUserID(c.Request().Context())
			if !ok {
				return err
			}
			ar := audit.ParseRoute(method, route)
			meta, _ := json.Marshal(auditMetadata{Status: responseStatus(c, err)})
			logger.LogEvent(c.Request().Context(), userID, ar.Action, ar.Resource, string(meta))
			return err
		}
	}
}

// responseStatus returns the status the error handler will write for err, or the committed status.
func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
