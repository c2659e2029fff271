package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/truckpitstop/garage-backend/internal/auth"
	"github.com/truckpitstop/garage-backend/internal/config"
	"github.com/truckpitstop/garage-backend/internal/middleware"
	"github.com/truckpitstop/garage-backend/internal/model"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg config.Config
	Svc *auth.Service
}

func NewAuthHandler(cfg config.Config, svc *auth.Service) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Svc: svc}
}

// ----- DTOs -----

type registerReq struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	TenantSlug string `json:"tenant_slug"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type forgotPasswordReq struct {
	Email string `json:"email"`
}
type resetPasswordReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}
type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type userPart struct {
	ID        uint64  `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Role      string  `json:"role"`
	TenantID  *uint64 `json:"tenant_id,omitempty"`
}
type authResp struct {
	User   userPart       `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

func toUserPart(u *model.User) userPart {
	return userPart{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		TenantID:  u.TenantID,
	}
}

// Register creates a customer account and returns tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, pair, err := h.Svc.Register(ctx, auth.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		TenantSlug: req.TenantSlug,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
		case errors.Is(err, auth.ErrTenantNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "garage not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
		}
	}

	h.setAuthCookies(c, pair)
	return c.JSON(http.StatusCreated, authResp{User: toUserPart(u), Tokens: pair})
}

// Login verifies credentials and returns a fresh pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, pair, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return h.authError(c, err)
	}

	h.setAuthCookies(c, pair)
	return c.JSON(http.StatusOK, authResp{User: toUserPart(u), Tokens: pair})
}

// Refresh rotates a refresh token. The token is read from the body first,
// falling back to the refresh_token cookie.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req) // body is optional when the cookie is present
	raw := req.RefreshToken
	if raw == "" {
		if ck, err := c.Cookie("refresh_token"); err == nil {
			raw = ck.Value
		}
	}
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, pair, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		return h.authError(c, err)
	}

	h.setAuthCookies(c, pair)
	return c.JSON(http.StatusOK, authResp{User: toUserPart(u), Tokens: pair})
}

// Logout blacklists whichever tokens the request carries and clears cookies.
// Safe to call with already-dead tokens.
func (h *AuthHandler) Logout(c echo.Context) error {
	access := ""
	if hdr := c.Request().Header.Get("Authorization"); strings.HasPrefix(hdr, "Bearer ") {
		access = strings.TrimPrefix(hdr, "Bearer ")
	} else if ck, err := c.Cookie("access_token"); err == nil {
		access = ck.Value
	}
	refresh := ""
	var req refreshReq
	_ = c.Bind(&req)
	if req.RefreshToken != "" {
		refresh = req.RefreshToken
	} else if ck, err := c.Cookie("refresh_token"); err == nil {
		refresh = ck.Value
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.Logout(ctx, access, refresh); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "logout could not be completed"})
	}

	h.clearAuthCookies(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// ForgotPassword always answers with the same message regardless of whether
// the email exists. The actual work runs detached so response timing does
// not depend on the input either.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	go func(email string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		h.Svc.ForgotPassword(ctx, email)
	}(req.Email)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "if an account exists for that email, a reset link has been sent",
	})
}

// ResetPassword consumes a one-time reset token and sets a new password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Token == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token and new password required"})
	}
	if len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidResetToken):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired reset token"})
		case errors.Is(err, auth.ErrStoreUnavailable):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "token validation unavailable"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password reset failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// ChangePassword updates the authenticated user's password and revokes every
// previously issued token.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	u := middleware.CurrentUser(c)
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "current and new password required"})
	}
	if len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.ChangePassword(ctx, u, req.CurrentPassword, req.NewPassword); err != nil {
		return h.authError(c, err)
	}

	// Existing cookies hold revoked tokens.
	h.clearAuthCookies(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed; please log in again"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	u := middleware.CurrentUser(c)
	return c.JSON(http.StatusOK, toUserPart(u))
}

// authError maps service sentinels onto HTTP statuses. Anything that does
// not match a sentinel is a 500 with a generic message.
func (h *AuthHandler) authError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect email or password"})
	case errors.Is(err, auth.ErrInactiveAccount):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
	case errors.Is(err, auth.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "token validation unavailable"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
}

// ----- cookies -----

func (h *AuthHandler) sameSite() http.SameSite {
	switch strings.ToLower(h.Cfg.CookieSameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// setAuthCookies writes both tokens as HttpOnly cookies. The refresh cookie
// is scoped to the auth routes so it is never sent with ordinary API calls.
func (h *AuthHandler) setAuthCookies(c echo.Context, pair auth.TokenPair) {
	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    pair.Access,
		Path:     "/",
		Domain:   h.Cfg.CookieDomain,
		MaxAge:   h.Cfg.AccessTTLMin * 60,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: h.sameSite(),
	})
	c.SetCookie(&http.Cookie{
		Name:     "refresh_token",
		Value:    pair.Refresh,
		Path:     "/v1/auth",
		Domain:   h.Cfg.CookieDomain,
		MaxAge:   h.Cfg.RefreshTTLDays * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: h.sameSite(),
	})
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name: "access_token", Value: "", Path: "/", Domain: h.Cfg.CookieDomain,
		MaxAge: -1, HttpOnly: true, Secure: h.Cfg.CookieSecure, SameSite: h.sameSite(),
	})
	c.SetCookie(&http.Cookie{
		Name: "refresh_token", Value: "", Path: "/v1/auth", Domain: h.Cfg.CookieDomain,
		MaxAge: -1, HttpOnly: true, Secure: h.Cfg.CookieSecure, SameSite: h.sameSite(),
	})
}
