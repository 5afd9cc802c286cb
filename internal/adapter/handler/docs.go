package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"docs-portal/internal/domain"
	"docs-portal/internal/render"
	"docs-portal/internal/site"

	"github.com/labstack/echo/v4"
)

const colorSchemeHint = "Sec-CH-Prefers-Color-Scheme"

// DocsHandler serves documentation pages and their diagram fragments.
type DocsHandler struct {
	layout   *Layout
	library  *site.Library
	renderer *Renderer
}

// NewDocsHandler creates a new docs handler.
func NewDocsHandler(layout *Layout, library *site.Library, renderer *Renderer) *DocsHandler {
	return &DocsHandler{layout: layout, library: library, renderer: renderer}
}

// Page renders GET /docs/:id. Diagrams are left as placeholders for the
// browser to fill in.
func (h *DocsHandler) Page(c echo.Context) error {
	id := c.Param("id")
	doc, err := h.library.Get(id)
	if isNotFound(err) {
		return h.layout.Error(c, http.StatusNotFound, "页面不存在")
	}
	if err != nil {
		return err
	}

	body, err := doc.Render(render.ServerContext(), h.layout.Site().Mermaid)
	if err != nil {
		return fmt.Errorf("render doc %s: %w", id, err)
	}

	c.Response().Header().Set("Accept-CH", colorSchemeHint)
	page := h.layout.Page(c, doc.Title)
	page.Sidebar = h.sidebar(id)
	page.Body = body
	return c.Render(http.StatusOK, pageDoc, page)
}

// Diagram renders GET /fragments/diagram/:id/:index. It is only ever
// fetched by the hydration script, so it renders as a browser pass.
func (h *DocsHandler) Diagram(c echo.Context) error {
	id := c.Param("id")
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return mapDomainError(domain.ErrDiagramNotFound)
	}

	source, err := h.library.Diagram(id, index)
	if err != nil {
		return mapDomainError(err)
	}

	mode, ok := colorModeFrom(c)
	if !ok {
		return mapDomainError(domain.ErrNoColorMode)
	}

	out, err := render.Diagram(id, index, source, h.layout.Site().Mermaid).Render(render.BrowserContext(mode))
	if err != nil {
		return mapDomainError(err)
	}
	c.Response().Header().Set("Vary", colorSchemeHint)
	return c.HTML(http.StatusOK, string(out))
}

// Redirect answers a configured site redirect.
func (h *DocsHandler) Redirect(c echo.Context) error {
	to, ok := h.layout.Site().RedirectFor(c.Request().URL.Path)
	if !ok {
		return h.layout.Error(c, http.StatusNotFound, "页面不存在")
	}
	return c.Redirect(http.StatusFound, to)
}

// Prerender writes doc id as a complete static page. There is no browser
// behind the page, so the widget is signed out and every diagram is a
// placeholder.
func (h *DocsHandler) Prerender(w io.Writer, id string) error {
	doc, err := h.library.Get(id)
	if err != nil {
		return err
	}
	body, err := doc.Render(render.PrerenderContext(), h.layout.Site().Mermaid)
	if err != nil {
		return err
	}

	page := h.layout.StaticPage(doc.Title)
	page.Sidebar = h.sidebar(id)
	page.Body = body
	return h.renderer.Execute(w, pageDoc, page)
}

func (h *DocsHandler) sidebar(active string) []sidebarEntry {
	entries := make([]sidebarEntry, 0, len(h.layout.Site().Sidebar))
	for _, item := range h.layout.Site().Sidebar {
		if item.Category == "" {
			entries = append(entries, h.link(item.Doc, active))
			continue
		}
		category := sidebarEntry{Label: item.Category, Collapsed: item.Collapsed}
		for _, id := range item.Items {
			link := h.link(id, active)
			if link.Active {
				category.Collapsed = false
			}
			category.Items = append(category.Items, link)
		}
		entries = append(entries, category)
	}
	return entries
}

func (h *DocsHandler) link(id, active string) sidebarEntry {
	label := id
	if doc, err := h.library.Get(id); err == nil && doc.Title != "" {
		label = doc.Title
	}
	return sidebarEntry{Label: label, DocID: id, Active: id == active}
}

// colorModeFrom reads the browser's colour mode from, in order, the mode
// query parameter, the theme cookie and the colour-scheme client hint.
func colorModeFrom(c echo.Context) (render.ColorMode, bool) {
	if mode, ok := render.ParseColorMode(c.QueryParam("mode")); ok {
		return mode, true
	}
	if cookie, err := c.Cookie("theme"); err == nil {
		if mode, ok := render.ParseColorMode(cookie.Value); ok {
			return mode, true
		}
	}
	hint := strings.Trim(c.Request().Header.Get(colorSchemeHint), `"`)
	return render.ParseColorMode(hint)
}

// isNotFound reports whether err means the requested content does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrDocNotFound) || errors.Is(err, domain.ErrDiagramNotFound)
}
