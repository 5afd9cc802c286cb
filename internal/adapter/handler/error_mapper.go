package handler

import (
	"errors"
	"net/http"

	"docs-portal/internal/domain"

	"github.com/labstack/echo/v4"
)

// mapDomainError converts a domain error into an appropriate echo.HTTPError.
func mapDomainError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, domain.ErrDocNotFound),
		errors.Is(err, domain.ErrDiagramNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")

	case errors.Is(err, domain.ErrNoColorMode):
		return echo.NewHTTPError(http.StatusBadRequest, "color mode required")

	case errors.Is(err, domain.ErrIdentityOperationFailed),
		errors.Is(err, domain.ErrMissingCredentials):
		return echo.NewHTTPError(http.StatusBadRequest, domain.UserMessage(err))

	case errors.Is(err, domain.ErrBrowserTokenInvalid),
		errors.Is(err, domain.ErrNoSession):
		return echo.NewHTTPError(http.StatusUnauthorized, "browser session required")

	case errors.Is(err, domain.ErrCSRFMismatch):
		return echo.NewHTTPError(http.StatusForbidden, "invalid csrf token")

	case errors.Is(err, domain.ErrSubmissionInFlight),
		errors.Is(err, domain.ErrSessionSuperseded):
		return echo.NewHTTPError(http.StatusConflict, domain.UserMessage(err))

	case errors.Is(err, domain.ErrIdentityUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "identity provider unavailable")

	case errors.Is(err, domain.ErrIdentityTimeout):
		return echo.NewHTTPError(http.StatusGatewayTimeout, "identity provider timed out")

	case errors.Is(err, domain.ErrCSRFSecretMissing),
		errors.Is(err, domain.ErrBrowserSecretWeak):
		return echo.NewHTTPError(http.StatusInternalServerError, "token generation error")

	case errors.Is(err, domain.ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
