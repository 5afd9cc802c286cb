package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// OTelStatusMiddleware records the response status on the request span and
// marks the span failed for 5xx only. A login form re-rendered with the
// provider's message is a 200 and stays Unset.
//
// It must sit inside otelecho.Middleware, which owns the span.
func OTelStatusMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			span := trace.SpanFromContext(c.Request().Context())
			if !span.SpanContext().IsValid() {
				return err
			}

			status := responseStatus(c, err)
			span.SetAttributes(semconv.HTTPResponseStatusCode(status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
				if err != nil {
					span.RecordError(err)
				}
			}
			return err
		}
	}
}

// responseStatus is the status the client will see. Handlers that return an
// error have not written anything yet; echo's error handler writes the
// HTTPError code, or 500 for anything else, after this middleware returns.
func responseStatus(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
