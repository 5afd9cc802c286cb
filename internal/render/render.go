// Package render decides, per rendering pass, which components may be
// evaluated. Server-side passes get placeholders for browser-only
// components; the real component renders only in a browser pass.
package render

import (
	"html/template"
	"strings"
)

// Pass identifies who is rendering.
type Pass int

const (
	// Prerender is the static build that writes HTML files ahead of time.
	Prerender Pass = iota
	// Server is a page rendered per request before any script runs.
	Server
	// Browser is a fragment requested by the browser's own script once the
	// page is live.
	Browser
)

func (p Pass) String() string {
	switch p {
	case Server:
		return "server"
	case Browser:
		return "browser"
	default:
		return "prerender"
	}
}

// ColorMode is the browser's light or dark preference.
type ColorMode string

const (
	Light ColorMode = "light"
	Dark  ColorMode = "dark"
)

// ParseColorMode accepts "light" or "dark" in any case.
func ParseColorMode(s string) (ColorMode, bool) {
	switch ColorMode(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

// Context is the render context handed to every component. ColorMode is
// only known in a browser pass.
type Context struct {
	Pass      Pass
	ColorMode ColorMode
}

// ServerContext is the context for per-request page rendering.
func ServerContext() Context { return Context{Pass: Server} }

// PrerenderContext is the context for the static build.
func PrerenderContext() Context { return Context{Pass: Prerender} }

// BrowserContext is the context for fragments the browser fetches.
func BrowserContext(mode ColorMode) Context {
	return Context{Pass: Browser, ColorMode: mode}
}

// InBrowser reports whether the browser itself is rendering.
func (c Context) InBrowser() bool { return c.Pass == Browser }

// Component renders a piece of markup.
type Component interface {
	Render(ctx Context) (template.HTML, error)
}

// ComponentFunc adapts a function to Component.
type ComponentFunc func(ctx Context) (template.HTML, error)

// Render implements Component.
func (f ComponentFunc) Render(ctx Context) (template.HTML, error) { return f(ctx) }

// Static is a component with fixed markup.
type Static template.HTML

// Render implements Component.
func (s Static) Render(Context) (template.HTML, error) { return template.HTML(s), nil }

// EmptyDiv is the default placeholder.
const EmptyDiv Static = "<div></div>"
