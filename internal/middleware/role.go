package middleware // middleware provides shared request processing for handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sweet-shop-api/internal/model"
)

// RequireAdmin returns a middleware that enforces the admin role on
// the authenticated principal. It must run after JWTAuth, which
// stores the role read from the users table in the context; the
// token's own role claim is never consulted here. Non-admin callers
// receive a 403 that names their current role, matching the detail
// the catalog endpoints have always returned.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok {
				// JWTAuth did not run; treat as unauthenticated.
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			if role != model.RoleAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": fmt.Sprintf("admin access required (current role: %s)", role),
				})
			}
			return next(c)
		}
	}
}
