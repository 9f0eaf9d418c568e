package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identitydomain "github.com/Gelzieny/remix-of-economic-insight/internal/identity/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/identity/service"
	"github.com/Gelzieny/remix-of-economic-insight/internal/security"
	"github.com/Gelzieny/remix-of-economic-insight/internal/server/interceptors"
	sessiondomain "github.com/Gelzieny/remix-of-economic-insight/internal/session/domain"
	userdomain "github.com/Gelzieny/remix-of-economic-insight/internal/user/domain"
)

type fakeUsers struct {
	mu sync.Mutex
	m  map[string]*userdomain.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*userdomain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.m {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*userdomain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.m[email], nil
}

func (f *fakeUsers) Create(_ context.Context, u *userdomain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[u.Email] = u
	return nil
}

func (f *fakeUsers) UpdatePassword(context.Context, string, string) error { return nil }

type fakeSessions struct {
	mu sync.Mutex
	m  map[string]*sessiondomain.Session
}

func (f *fakeSessions) GetByID(_ context.Context, id string) (*sessiondomain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.m[id], nil
}

func (f *fakeSessions) Create(_ context.Context, s *sessiondomain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[s.ID] = s
	return nil
}

func (f *fakeSessions) Revoke(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.m[id]; ok {
		now := time.Now()
		s.RevokedAt = &now
	}
	return nil
}

func (f *fakeSessions) RevokeAllSessionsByUser(context.Context, string) error { return nil }

func (f *fakeSessions) UpdateRefreshToken(_ context.Context, id, jti, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.m[id]; ok {
		s.RefreshJti, s.RefreshTokenHash = jti, hash
	}
	return nil
}

func (f *fakeSessions) UpdateLastSeen(context.Context, string, time.Time) error { return nil }

type fakeResets struct{}

func (fakeResets) Create(context.Context, *identitydomain.PasswordReset) error { return nil }
func (fakeResets) GetByTokenHash(context.Context, string) (*identitydomain.PasswordReset, error) {
	return nil, nil
}
func (fakeResets) MarkUsed(context.Context, string) (bool, error) { return false, nil }

func setupTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	require.NoError(t, err)
	auth := service.NewAuthService(
		&fakeUsers{m: map[string]*userdomain.User{}},
		&fakeSessions{m: map[string]*sessiondomain.Session{}},
		fakeResets{},
		security.NewHasher(4), tokens, nil, nil,
	)
	h := NewHandler(auth)
	e := echo.New()
	v1 := e.Group("/api/v1")
	h.RegisterPublic(v1)
	protected := v1.Group("", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get(echo.HeaderAuthorization)
			sid, uid, err := tokens.ValidateAccess(strings.TrimPrefix(authz, "Bearer "))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized)
			}
			c.SetRequest(c.Request().WithContext(interceptors.WithIdentity(c.Request().Context(), uid, sid)))
			return next(c)
		}
	})
	h.RegisterProtected(protected)
	return e
}

func doJSON(e *echo.Echo, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegisterLoginMe(t *testing.T) {
	e := setupTestEcho(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/auth/register", `{"email":"lia@example.com","password":"segredo"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(e, http.MethodPost, "/api/v1/auth/login", `{"email":"lia@example.com","password":"segredo"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tok TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	assert.NotEmpty(t, tok.AccessToken)
	assert.NotEmpty(t, tok.RefreshToken)

	rec = doJSON(e, http.MethodGet, "/api/v1/me", "", tok.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile ProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "lia@example.com", profile.Email)
	assert.Equal(t, "lia", profile.Name)
	assert.Equal(t, "L", profile.Initials)

	rec = doJSON(e, http.MethodPost, "/api/v1/auth/refresh", `{"refresh_token":"`+tok.RefreshToken+`"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister_ErrorMapping(t *testing.T) {
	e := setupTestEcho(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"invalid email", `{"email":"nope","password":"segredo"}`, http.StatusBadRequest},
		{"short password", `{"email":"a@example.com","password":"123"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/v1/auth/register", tt.body, "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	rec := doJSON(e, http.MethodPost, "/api/v1/auth/register", `{"email":"dup@example.com","password":"segredo"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(e, http.MethodPost, "/api/v1/auth/register", `{"email":"dup@example.com","password":"segredo"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	e := setupTestEcho(t)
	doJSON(e, http.MethodPost, "/api/v1/auth/register", `{"email":"x@example.com","password":"segredo"}`, "")
	rec := doJSON(e, http.MethodPost, "/api/v1/auth/login", `{"email":"x@example.com","password":"errado"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForgotAndReset(t *testing.T) {
	e := setupTestEcho(t)
	rec := doJSON(e, http.MethodPost, "/api/v1/auth/forgot", `{"email":"ghost@example.com"}`, "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/auth/reset", `{"token":"nope","password":"segredo"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout_NoBody(t *testing.T) {
	e := setupTestEcho(t)
	rec := doJSON(e, http.MethodPost, "/api/v1/auth/logout", "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestNilService(t *testing.T) {
	e := echo.New()
	h := NewHandler(nil)
	h.RegisterPublic(e.Group("/api/v1"))
	rec := doJSON(e, http.MethodPost, "/api/v1/auth/login", `{}`, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
