package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sweet-shop-api/internal/repository"
	"github.com/iliyamo/sweet-shop-api/internal/utils"
)

// JWTAuth returns an Echo middleware that authenticates a request. It
// validates the Bearer access token and then resolves the token's
// subject against the users table, so a deleted account is rejected
// even while its token is still formally valid. On success the
// resolved principal is stored in the request context under
// "user_id", "username" and "role".
//
// The role placed in context is the one currently stored on the user
// row, NOT the token's role claim. Downstream authorization reads
// this value, which is what makes a role downgrade effective
// immediately instead of at token expiry.
func JWTAuth(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header is "Bearer <token>"; anything else is
			// rejected before touching the token library.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			// Re-resolve the subject against current state. The token is
			// only a claim; the users table decides who exists and with
			// which role.
			u, err := users.GetByUsername(c.Request().Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "auth lookup failed"})
			}

			c.Set("user_id", u.ID)
			c.Set("username", u.Username)
			c.Set("role", u.Role)
			return next(c)
		}
	}
}
