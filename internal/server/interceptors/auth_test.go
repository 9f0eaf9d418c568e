package interceptors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Gelzieny/remix-of-economic-insight/internal/security"
	sessiondomain "github.com/Gelzieny/remix-of-economic-insight/internal/session/domain"
)

type mockSessions map[string]*sessiondomain.Session

func (m mockSessions) GetByID(_ context.Context, id string) (*sessiondomain.Session, error) {
	return m[id], nil
}

// serve runs one request through Auth and reports the status and the user_id seen by the handler.
func serve(t *testing.T, mw echo.MiddlewareFunc, authorization string) (int, string) {
	t.Helper()
	e := echo.New()
	var seen string
	e.GET("/x", func(c echo.Context) error {
		seen, _ = GetUserID(c.Request().Context())
		return c.NoContent(http.StatusOK)
	}, mw)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code, seen
}

func TestAuth_Required(t *testing.T) {
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, _, err := tokens.IssueAccess("session-1", "user-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	mw := Auth(tokens, nil, true)

	if code, _ := serve(t, mw, ""); code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", code)
	}
	if code, _ := serve(t, mw, "Bearer garbage"); code != http.StatusUnauthorized {
		t.Errorf("invalid token: status = %d, want 401", code)
	}
	if code, _ := serve(t, mw, "Basic abc"); code != http.StatusUnauthorized {
		t.Errorf("wrong scheme: status = %d, want 401", code)
	}
	code, uid := serve(t, mw, "bearer "+token)
	if code != http.StatusOK || uid != "user-1" {
		t.Errorf("valid token: status = %d user = %q", code, uid)
	}
}

func TestAuth_Optional(t *testing.T) {
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, _, _ := tokens.IssueAccess("session-1", "user-1")
	mw := Auth(tokens, nil, false)

	if code, uid := serve(t, mw, ""); code != http.StatusOK || uid != "" {
		t.Errorf("no token: status = %d user = %q", code, uid)
	}
	if code, uid := serve(t, mw, "Bearer garbage"); code != http.StatusOK || uid != "" {
		t.Errorf("invalid token: status = %d user = %q", code, uid)
	}
	if _, uid := serve(t, mw, "Bearer "+token); uid != "user-1" {
		t.Errorf("valid token: user = %q, want user-1", uid)
	}
}

func TestAuth_SessionChecks(t *testing.T) {
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	revokedAt := time.Now().Add(-time.Minute)
	sessions := mockSessions{
		"live":    {ID: "live", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)},
		"revoked": {ID: "revoked", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour), RevokedAt: &revokedAt},
		"other":   {ID: "other", UserID: "user-2", ExpiresAt: time.Now().Add(time.Hour)},
	}
	mw := Auth(tokens, sessions, true)

	tests := []struct {
		session string
		want    int
	}{
		{"live", http.StatusOK},
		{"revoked", http.StatusUnauthorized},
		{"other", http.StatusUnauthorized},
		{"missing", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.session, func(t *testing.T) {
			token, _, err := tokens.IssueAccess(tt.session, "user-1")
			if err != nil {
				t.Fatalf("IssueAccess: %v", err)
			}
			if code, _ := serve(t, mw, "Bearer "+token); code != tt.want {
				t.Errorf("status = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestExtractBearer(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"Bearer":         "",
		"Bearer abc":     "abc",
		"BEARER  abc  ":  "abc",
		"Token abc":      "",
		"  bearer xyz  ": "xyz",
	}
	for in, want := range tests {
		if got := extractBearer(in); got != want {
			t.Errorf("extractBearer(%q) = %q, want %q", in, got, want)
		}
	}
}
