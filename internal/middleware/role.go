package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireStaff returns a middleware that rejects requests whose access token
// does not carry the staff flag. It assumes JWTAuth has already stored
// "is_staff" in the context; missing or mistyped values are treated as
// non-staff and answered with 403 Forbidden. Category write routes are gated
// with this.
func RequireStaff() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			staff, ok := c.Get("is_staff").(bool)
			if !ok || !staff {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
