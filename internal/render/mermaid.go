package render

import (
	"fmt"
	"html/template"
	"net/url"
	"strconv"

	"docs-portal/internal/domain"
)

// MermaidThemes maps the browser colour mode to a Mermaid theme name.
type MermaidThemes struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// DefaultMermaidThemes are used when the site config names none.
var DefaultMermaidThemes = MermaidThemes{Light: "neutral", Dark: "forest"}

func (t MermaidThemes) themeFor(mode ColorMode) string {
	if mode == Dark {
		if t.Dark != "" {
			return t.Dark
		}
		return DefaultMermaidThemes.Dark
	}
	if t.Light != "" {
		return t.Light
	}
	return DefaultMermaidThemes.Light
}

// Mermaid renders a diagram definition for the Mermaid runtime. It needs
// the browser's colour mode and fails with domain.ErrNoColorMode without
// one.
type Mermaid struct {
	Source string
	Themes MermaidThemes
}

// Render implements Component.
func (m Mermaid) Render(ctx Context) (template.HTML, error) {
	if !ctx.InBrowser() || ctx.ColorMode == "" {
		return "", fmt.Errorf("mermaid: %w", domain.ErrNoColorMode)
	}
	theme := m.Themes.themeFor(ctx.ColorMode)
	body := fmt.Sprintf("%%%%{init: {\"theme\": %s}}%%%%\n%s", strconv.Quote(theme), m.Source)
	return template.HTML(fmt.Sprintf(`<pre class="mermaid" data-color-mode="%s">%s</pre>`,
		template.HTMLEscapeString(string(ctx.ColorMode)),
		template.HTMLEscapeString(body),
	)), nil
}

// DiagramPath is where the browser fetches diagram index of docID.
func DiagramPath(docID string, index int) string {
	return fmt.Sprintf("/fragments/diagram/%s/%d", url.PathEscape(docID), index)
}

// Diagram wraps a Mermaid block so it only renders in the browser. Outside
// the browser it leaves an empty div that the hydration script fills from
// DiagramPath.
func Diagram(docID string, index int, source string, themes MermaidThemes) BrowserOnly {
	return BrowserOnly{
		Fallback: Static(fmt.Sprintf(`<div data-hydrate="%s"></div>`,
			template.HTMLEscapeString(DiagramPath(docID, index)))),
		Component: func() Component {
			return Mermaid{Source: source, Themes: themes}
		},
	}
}
