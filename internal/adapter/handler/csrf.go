package handler

import (
	"log/slog"
	"net/http"

	"docs-portal/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	csrfFormField = "csrf_token"
	csrfHeader    = "X-CSRF-Token"
)

// CSRFHandler issues and checks the CSRF tokens on form posts.
type CSRFHandler struct {
	generate *usecase.GenerateCSRF
	verify   *usecase.VerifyCSRF
}

// NewCSRFHandler creates a new CSRF handler.
func NewCSRFHandler(generate *usecase.GenerateCSRF, verify *usecase.VerifyCSRF) *CSRFHandler {
	return &CSRFHandler{generate: generate, verify: verify}
}

// csrfResponse represents the CSRF token response.
type csrfResponse struct {
	Data struct {
		CSRFToken string `json:"csrf_token"`
	} `json:"data"`
}

// Handle returns the browser's CSRF token as JSON for scripted posts.
func (h *CSRFHandler) Handle(c echo.Context) error {
	ctx := c.Request().Context()

	browser, err := requireBrowser(c)
	if err != nil {
		return err
	}

	token, err := h.generate.Execute(ctx, browser.ID)
	if err != nil {
		return mapDomainError(err)
	}

	slog.DebugContext(ctx, "csrf token issued")

	resp := csrfResponse{}
	resp.Data.CSRFToken = token
	return c.JSON(http.StatusOK, resp)
}

// Require rejects posts whose CSRF token, from the form field or the
// X-CSRF-Token header, does not belong to the requesting browser.
func (h *CSRFHandler) Require() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			browser, err := requireBrowser(c)
			if err != nil {
				return err
			}

			token := c.Request().Header.Get(csrfHeader)
			if token == "" {
				token = c.FormValue(csrfFormField)
			}

			if err := h.verify.Execute(c.Request().Context(), browser.ID, token); err != nil {
				return mapDomainError(err)
			}
			return next(c)
		}
	}
}
