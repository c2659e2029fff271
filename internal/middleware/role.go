package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/truckpitstop/garage-backend/internal/model"
)

// RequireRole allows the request through only when the authenticated user
// holds one of the given roles. super_admin always passes. Must run after
// Authenticate.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := CurrentUser(c)
			if u == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing access token"})
			}
			if u.Role != model.RoleSuperAdmin && !allowed[u.Role] {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "insufficient role"})
			}
			return next(c)
		}
	}
}

// Staff is the role set for garage personnel routes.
func Staff() echo.MiddlewareFunc {
	return RequireRole(model.RoleGarageAdmin, model.RoleMechanic, model.RoleReceptionist)
}
