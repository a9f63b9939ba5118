package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// UserHeader carries the acting user id when requests arrive through a
// trusted gateway.
const UserHeader = "X-Sharer-User-Id"

const userIDKey = "user_id"

// IdentityConfig controls how the acting user is resolved.
type IdentityConfig struct {
	JWTSecret   string
	TrustHeader bool
}

// Identity resolves the acting user from a Bearer access token or, when the
// gateway is trusted, from the X-Sharer-User-Id header. A request carrying
// neither passes through anonymously; a request carrying a malformed one is
// rejected with 401.
func Identity(cfg IdentityConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if auth := c.Request().Header.Get("Authorization"); auth != "" {
				raw, ok := strings.CutPrefix(auth, "Bearer ")
				if !ok {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
				}
				id, err := subjectFromToken(cfg.JWTSecret, strings.TrimSpace(raw))
				if err != nil {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
				}
				c.Set(userIDKey, id)
				return next(c)
			}
			if cfg.TrustHeader {
				if h := strings.TrimSpace(c.Request().Header.Get(UserHeader)); h != "" {
					id, err := strconv.ParseUint(h, 10, 64)
					if err != nil || id == 0 {
						return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid " + UserHeader + " header"})
					}
					c.Set(userIDKey, id)
				}
			}
			return next(c)
		}
	}
}

// RequireUser rejects requests for which Identity resolved no user.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := UserID(c); !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
			}
			return next(c)
		}
	}
}

// UserID returns the acting user resolved by Identity.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(userIDKey).(uint64)
	return id, ok && id != 0
}

// userKey renders the acting user for rate limit and cache keys.
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
