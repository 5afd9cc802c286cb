package handler

import (
	"net/http"

	"docs-portal/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SessionHandler reports the browser's session state as JSON for scripts.
type SessionHandler struct {
	layout *Layout
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(layout *Layout) *SessionHandler {
	return &SessionHandler{layout: layout}
}

type sessionResponse struct {
	SignedIn bool   `json:"signed_in"`
	Email    string `json:"email,omitempty"`
}

// Handle processes GET /auth/session.
func (h *SessionHandler) Handle(c echo.Context) error {
	browser, err := requireBrowser(c)
	if err != nil {
		return err
	}

	view := h.layout.Widget(c.Request().Context(), browser)
	return c.JSON(http.StatusOK, sessionResponse{
		SignedIn: view.Kind == usecase.ViewSignedIn.String(),
		Email:    view.Email,
	})
}
