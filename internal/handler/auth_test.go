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

	"github.com/truckpitstop/garage-backend/internal/auth"
	"github.com/truckpitstop/garage-backend/internal/config"
	"github.com/truckpitstop/garage-backend/internal/middleware"
	"github.com/truckpitstop/garage-backend/internal/model"
	"github.com/truckpitstop/garage-backend/internal/repository"
)

// ----- in-memory backends -----

type memUsers struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*model.User
}

func newMemUsers() *memUsers { return &memUsers{nextID: 1, byID: map[uint64]*model.User{}} }

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = m.nextID
	m.nextID++
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id uint64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type memTenants struct{}

func (memTenants) GetBySlug(_ context.Context, _ string) (*model.Tenant, error) {
	return nil, repository.ErrNotFound
}

type memRevocations struct {
	mu        sync.Mutex
	versions  map[uint64]int64
	blacklist map[string]bool
	resets    map[string]string
}

func newMemRevocations() *memRevocations {
	return &memRevocations{versions: map[uint64]int64{}, blacklist: map[string]bool{}, resets: map[string]string{}}
}

func (m *memRevocations) Version(_ context.Context, userID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versions[userID], nil
}

func (m *memRevocations) IncrementVersion(_ context.Context, userID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[userID]++
	return m.versions[userID], nil
}

func (m *memRevocations) Blacklist(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ttl > 0 {
		m.blacklist[jti] = true
	}
	return nil
}

func (m *memRevocations) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blacklist[jti], nil
}

func (m *memRevocations) StoreResetToken(_ context.Context, email, token string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets[token] = email
	return nil
}

func (m *memRevocations) LookupResetToken(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets[token], nil
}

func (m *memRevocations) DeleteResetToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.resets, token)
	return nil
}

type noopMailer struct{}

func (noopMailer) SendPasswordReset(context.Context, *model.User, string) error { return nil }

// ----- harness -----

type authEnv struct {
	e *echo.Echo
	h *AuthHandler
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   30,
		RefreshTTLDays: 7,
		BcryptCost:     4,
		CookieSameSite: "lax",
	}
	codec := auth.NewTokenCodec(cfg.JWTSecret, 30*time.Minute, 7*24*time.Hour)
	svc := auth.NewService(newMemUsers(), memTenants{}, newMemRevocations(), codec, noopMailer{}, cfg.BcryptCost)
	h := NewAuthHandler(cfg, svc)

	e := echo.New()
	g := e.Group("/v1/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)
	g.POST("/forgot-password", h.ForgotPassword)
	g.POST("/reset-password", h.ResetPassword)
	me := e.Group("/v1", middleware.Authenticate(svc))
	me.GET("/me", h.Me)
	me.POST("/me/change-password", h.ChangePassword)

	return &authEnv{e: e, h: h}
}

func (env *authEnv) do(method, path, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *authEnv) register(t *testing.T, email, password string) authResp {
	t.Helper()
	rec := env.do(http.MethodPost, "/v1/auth/register",
		`{"email":"`+email+`","password":"`+password+`","first_name":"Pat"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func cookieByName(res *http.Response, name string) *http.Cookie {
	for _, ck := range res.Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

// ----- tests -----

func TestRegisterIssuesTokensAndCookies(t *testing.T) {
	env := newAuthEnv(t)
	rec := env.do(http.MethodPost, "/v1/auth/register",
		`{"email":"pat@example.com","password":"hunter2hunter2","first_name":"Pat"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pat@example.com", resp.User.Email)
	assert.Equal(t, model.RoleCustomer, resp.User.Role)
	assert.NotEmpty(t, resp.Tokens.Access)
	assert.NotEmpty(t, resp.Tokens.Refresh)

	access := cookieByName(rec.Result(), "access_token")
	require.NotNil(t, access)
	assert.Equal(t, "/", access.Path)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, resp.Tokens.Access, access.Value)

	refresh := cookieByName(rec.Result(), "refresh_token")
	require.NotNil(t, refresh)
	assert.Equal(t, "/v1/auth", refresh.Path)
	assert.True(t, refresh.HttpOnly)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	env := newAuthEnv(t)
	rec := env.do(http.MethodPost, "/v1/auth/register",
		`{"email":"pat@example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newAuthEnv(t)
	env.register(t, "pat@example.com", "hunter2hunter2")
	rec := env.do(http.MethodPost, "/v1/auth/register",
		`{"email":"pat@example.com","password":"hunter2hunter2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newAuthEnv(t)
	env.register(t, "pat@example.com", "hunter2hunter2")
	rec := env.do(http.MethodPost, "/v1/auth/login",
		`{"email":"pat@example.com","password":"nope-nope-nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeWithBearerToken(t *testing.T) {
	env := newAuthEnv(t)
	resp := env.register(t, "pat@example.com", "hunter2hunter2")

	rec := env.do(http.MethodGet, "/v1/me", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+resp.Tokens.Access)
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me userPart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, resp.User.ID, me.ID)
}

func TestMeWithCookie(t *testing.T) {
	env := newAuthEnv(t)
	resp := env.register(t, "pat@example.com", "hunter2hunter2")

	rec := env.do(http.MethodGet, "/v1/me", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "access_token", Value: resp.Tokens.Access})
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestMeWithoutToken(t *testing.T) {
	env := newAuthEnv(t)
	rec := env.do(http.MethodGet, "/v1/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshFromCookie(t *testing.T) {
	env := newAuthEnv(t)
	resp := env.register(t, "pat@example.com", "hunter2hunter2")

	rec := env.do(http.MethodPost, "/v1/auth/refresh", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "refresh_token", Value: resp.Tokens.Refresh})
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rotated authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
	assert.NotEqual(t, resp.Tokens.Refresh, rotated.Tokens.Refresh)

	// The consumed token is rejected on replay.
	rec = env.do(http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+resp.Tokens.Refresh+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshWithoutToken(t *testing.T) {
	env := newAuthEnv(t)
	rec := env.do(http.MethodPost, "/v1/auth/refresh", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	env := newAuthEnv(t)
	resp := env.register(t, "pat@example.com", "hunter2hunter2")

	rec := env.do(http.MethodPost, "/v1/auth/logout",
		`{"refresh_token":"`+resp.Tokens.Refresh+`"}`, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+resp.Tokens.Access)
		})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Cookies are cleared.
	access := cookieByName(rec.Result(), "access_token")
	require.NotNil(t, access)
	assert.Less(t, access.MaxAge, 0)

	// The revoked access token no longer authenticates.
	rec = env.do(http.MethodGet, "/v1/me", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+resp.Tokens.Access)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePasswordRevokesOldTokens(t *testing.T) {
	env := newAuthEnv(t)
	resp := env.register(t, "pat@example.com", "hunter2hunter2")

	rec := env.do(http.MethodPost, "/v1/me/change-password",
		`{"current_password":"hunter2hunter2","new_password":"brand-new-pass1"}`,
		func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+resp.Tokens.Access) })
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(http.MethodGet, "/v1/me", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+resp.Tokens.Access)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/v1/auth/login",
		`{"email":"pat@example.com","password":"brand-new-pass1"}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestForgotPasswordIsAlwaysGeneric(t *testing.T) {
	env := newAuthEnv(t)
	env.register(t, "pat@example.com", "hunter2hunter2")

	for _, email := range []string{"pat@example.com", "nobody@example.com"} {
		rec := env.do(http.MethodPost, "/v1/auth/forgot-password", `{"email":"`+email+`"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "if an account exists")
	}
}
