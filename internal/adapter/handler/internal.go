package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InternalHandler serves operator endpoints behind the internal auth.
type InternalHandler struct {
	browsers interface{ Len() int }
	metrics  http.Handler
}

// NewInternalHandler creates a new internal handler.
func NewInternalHandler(browsers interface{ Len() int }) *InternalHandler {
	return &InternalHandler{browsers: browsers, metrics: promhttp.Handler()}
}

type statsResponse struct {
	Browsers int `json:"browsers"`
}

// HandleStats reports how many browsers are held in memory.
func (h *InternalHandler) HandleStats(c echo.Context) error {
	n := h.browsers.Len()
	slog.DebugContext(c.Request().Context(), "internal stats requested", "browsers", n, "remote_addr", c.RealIP())
	return c.JSON(http.StatusOK, statsResponse{Browsers: n})
}

// HandleMetrics serves the Prometheus scrape.
func (h *InternalHandler) HandleMetrics(c echo.Context) error {
	h.metrics.ServeHTTP(c.Response(), c.Request())
	return nil
}
