package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const internalAuthHeader = "X-Internal-Auth"

// InternalAuth creates middleware that validates a shared secret for internal
// endpoints such as the metrics scrape. The secret is read from
// X-Internal-Auth or, for Prometheus scrapers, from a bearer token.
// Comparison is constant-time.
func InternalAuth(sharedSecret string) echo.MiddlewareFunc {
	secretBytes := []byte(sharedSecret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			provided := []byte(providedSecret(c.Request()))
			if len(provided) == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing internal auth header")
			}
			if subtle.ConstantTimeCompare(provided, secretBytes) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, "invalid internal auth")
			}
			return next(c)
		}
	}
}

func providedSecret(r *http.Request) string {
	if v := r.Header.Get(internalAuthHeader); v != "" {
		return v
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return token
	}
	return ""
}
