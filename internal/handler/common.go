package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the user_id stored by the JWT middleware and converts
// it to uint64. The type switch tolerates the different numeric types a
// middleware or test might store.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// isStaff reports whether the JWT middleware marked the caller as staff.
// Anonymous callers and missing claims count as non-staff.
func isStaff(c echo.Context) bool {
	staff, ok := c.Get("is_staff").(bool)
	return ok && staff
}

// validationError answers a 400 with a single field-keyed message, the shape
// every write endpoint uses for input the client can correct.
func validationError(c echo.Context, field, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"errors": echo.Map{field: msg}})
}
