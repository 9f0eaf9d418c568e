package interceptors

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Gelzieny/remix-of-economic-insight/internal/security"
	sessiondomain "github.com/Gelzieny/remix-of-economic-insight/internal/session/domain"
)

const bearerPrefix = "bearer "

// SessionGetter looks up the session named in an access token.
type SessionGetter interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
}

// Auth returns middleware that validates the Bearer (access) token from the Authorization header
// and sets user_id and session_id in the request context.
// When required is false (public routes) a missing or invalid token passes through without identity,
// so handlers such as logout can still use it when present.
// sessions may be nil; otherwise the token's session must exist and be active.
func Auth(tokens *security.TokenProvider, sessions SessionGetter, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				if !required {
					return next(c)
				}
				return errUnauthenticated
			}

			sessionID, userID, err := tokens.ValidateAccess(token)
			if err == nil && sessions != nil {
				err = checkSession(c.Request().Context(), sessions, sessionID, userID)
			}
			if err != nil {
				if !required {
					return next(c)
				}
				return errUnauthenticated
			}

			ctx := WithIdentity(c.Request().Context(), userID, sessionID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

var errUnauthenticated = echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid authorization")

var errSessionInactive = echo.NewHTTPError(http.StatusUnauthorized, "session is not active")

func checkSession(ctx context.Context, sessions SessionGetter, sessionID, userID string) error {
	sess, err := sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil || sess.UserID != userID || !sess.Active(time.Now()) {
		return errSessionInactive
	}
	return nil
}

// extractBearer returns the token from an Authorization header value, or "" if missing or malformed.
func extractBearer(v string) string {
	v = strings.TrimSpace(v)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
