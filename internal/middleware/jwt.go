package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject and staff claims into the request context. The
// provided secret must match the one used when issuing tokens. Handlers read
// the acting identity via `c.Get("user_id")` and `c.Get("is_staff")` so no
// ambient global "current user" exists anywhere.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			uid, staff, ok := parseAccessToken(secret, raw)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set("user_id", uid)
			c.Set("is_staff", staff)
			return next(c)
		}
	}
}

// OptionalJWTAuth decodes a Bearer token when one is present but lets
// anonymous requests through untouched. Read endpoints use it so that staff
// callers see inactive products while everyone else browses without a token.
// A malformed token is treated as anonymous rather than rejected.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				if uid, staff, ok := parseAccessToken(secret, strings.TrimPrefix(auth, "Bearer ")); ok {
					c.Set("user_id", uid)
					c.Set("is_staff", staff)
				}
			}
			return next(c)
		}
	}
}

// parseAccessToken validates an HS256 access token and extracts the subject
// (user id) plus the staff flag. The signing method is checked so tokens
// signed with a different algorithm are rejected.
func parseAccessToken(secret, raw string) (uid uint64, staff bool, ok bool) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, false, false
	}
	claims, valid := tok.Claims.(jwt.MapClaims)
	if !valid {
		return 0, false, false
	}
	switch sub := claims["sub"].(type) {
	case float64:
		// JWT numeric values decode as float64.
		uid = uint64(sub)
	case string:
		if parsed, err := strconv.ParseUint(sub, 10, 64); err == nil {
			uid = parsed
		}
	}
	if uid == 0 {
		return 0, false, false
	}
	staff, _ = claims["staff"].(bool)
	return uid, staff, true
}
