package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"docs-portal/internal/usecase"

	"github.com/labstack/echo/v4"
)

// StatusHandler serves the auth-status widget as a fragment, as a live
// stream, and its logout control.
type StatusHandler struct {
	layout    *Layout
	renderer  *Renderer
	heartbeat time.Duration
	refresh   time.Duration
	logger    *slog.Logger
}

// NewStatusHandler creates a new status handler. The stream sends a
// heartbeat comment every heartbeat and re-checks the provider session
// every refresh.
func NewStatusHandler(layout *Layout, renderer *Renderer, heartbeat, refresh time.Duration, l *slog.Logger) *StatusHandler {
	return &StatusHandler{layout: layout, renderer: renderer, heartbeat: heartbeat, refresh: refresh, logger: l}
}

// Fragment renders the widget once.
func (h *StatusHandler) Fragment(c echo.Context) error {
	browser, err := requireBrowser(c)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, fragmentStatus, h.layout.Widget(c.Request().Context(), browser))
}

// Stream keeps the widget mounted for the lifetime of the request and
// pushes a "status" event with the rendered fragment on every change.
func (h *StatusHandler) Stream(c echo.Context) error {
	browser, err := requireBrowser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	w := c.Response().Writer
	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		h.logger.ErrorContext(ctx, "response writer doesn't support flushing")
		return nil
	}

	if err := browser.Identity.Refresh(ctx); err != nil {
		h.logger.WarnContext(ctx, "initial session refresh failed", "error", err)
	}

	widget := usecase.NewStatusWidget(browser.Identity, h.logger)
	widget.Mount()
	defer widget.Unmount()

	csrf := h.layout.token(ctx, browser)
	last := widget.View()
	if err := h.writeEvent(w, last, csrf); err != nil {
		return nil
	}
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()
	refresh := time.NewTicker(h.refresh)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case view, ok := <-widget.Changes():
			if !ok {
				return nil
			}
			if view == last {
				continue
			}
			last = view
			if err := h.writeEvent(w, view, csrf); err != nil {
				h.logger.DebugContext(ctx, "status stream closed", "error", err)
				return nil
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return nil
			}
			flusher.Flush()
		case <-refresh.C:
			if err := browser.Identity.Refresh(ctx); err != nil {
				h.logger.WarnContext(ctx, "session refresh failed", "error", err)
			}
		}
	}
}

// Logout signs the browser out and sends it home.
func (h *StatusHandler) Logout(c echo.Context) error {
	browser, err := requireBrowser(c)
	if err != nil {
		return err
	}

	widget := usecase.NewStatusWidget(browser.Identity, h.logger)
	widget.Mount()
	defer widget.Unmount()

	return c.Redirect(http.StatusSeeOther, widget.Logout(c.Request().Context()))
}

// writeEvent writes one SSE event. Each line of the fragment becomes its
// own data line.
func (h *StatusHandler) writeEvent(w http.ResponseWriter, view usecase.View, csrf string) error {
	var buf bytes.Buffer
	if err := h.renderer.Execute(&buf, fragmentStatus, toWidgetView(view, csrf)); err != nil {
		return err
	}

	var event strings.Builder
	event.WriteString("event: status\n")
	for _, line := range strings.Split(buf.String(), "\n") {
		event.WriteString("data: ")
		event.WriteString(line)
		event.WriteString("\n")
	}
	event.WriteString("\n")

	_, err := w.Write([]byte(event.String()))
	return err
}
