package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/truckpitstop/garage-backend/internal/auth"
	"github.com/truckpitstop/garage-backend/internal/model"
)

// userContextKey is where Authenticate stores the resolved *model.User.
const userContextKey = "current_user"

// Authenticate resolves the access token on every request and stores the
// matching user in the context. The token is taken from the Authorization
// header (Bearer scheme) first, falling back to the access_token cookie so
// browser clients work without a JS-visible token.
//
// Resolution is stateful: beyond the signature and expiry the token's jti
// must not be blacklisted and its version must match the user's current one,
// so a logged-out or mass-invalidated token is rejected here even though it
// still decodes.
func Authenticate(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := ""
			if h := c.Request().Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				raw = strings.TrimPrefix(h, "Bearer ")
			} else if ck, err := c.Cookie("access_token"); err == nil {
				raw = ck.Value
			}
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing access token"})
			}

			user, err := svc.Resolve(c.Request().Context(), raw)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrInactiveAccount):
					return c.JSON(http.StatusForbidden, map[string]string{"error": "account disabled"})
				case errors.Is(err, auth.ErrStoreUnavailable):
					return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "token validation unavailable"})
				default:
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
				}
			}

			SetCurrentUser(c, user)
			return next(c)
		}
	}
}

// SetCurrentUser stores the resolved user in the request context.
func SetCurrentUser(c echo.Context, u *model.User) {
	c.Set(userContextKey, u)
}

// CurrentUser returns the user placed in the context by Authenticate, or nil
// when the route was not wrapped by it.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(userContextKey).(*model.User)
	return u
}
