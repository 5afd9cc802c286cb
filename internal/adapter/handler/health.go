package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	docs interface{ Len() int }
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(docs interface{ Len() int }) *HealthHandler {
	return &HealthHandler{docs: docs}
}

type healthResponse struct {
	Status string `json:"status"`
	Docs   int    `json:"docs"`
}

// Handle processes the /health endpoint.
func (h *HealthHandler) Handle(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status: "healthy",
		Docs:   h.docs.Len(),
	})
}
