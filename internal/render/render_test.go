package render

import (
	"errors"
	"html/template"
	"testing"

	"docs-portal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserOnly_NonBrowserPassesRenderFallback(t *testing.T) {
	built := false
	wrapper := BrowserOnly{
		Component: func() Component {
			built = true
			return Static("<svg>diagram</svg>")
		},
	}

	for _, ctx := range []Context{PrerenderContext(), ServerContext()} {
		t.Run(ctx.Pass.String(), func(t *testing.T) {
			out, err := wrapper.Render(ctx)

			require.NoError(t, err)
			assert.Equal(t, template.HTML("<div></div>"), out)
		})
	}
	assert.False(t, built, "wrapped component must not be built outside the browser")
}

func TestBrowserOnly_BrowserPassRendersComponent(t *testing.T) {
	wrapper := BrowserOnly{
		Fallback:  Static("<div></div>"),
		Component: func() Component { return Static("<svg>diagram</svg>") },
	}

	out, err := wrapper.Render(BrowserContext(Light))

	require.NoError(t, err)
	assert.Equal(t, template.HTML("<svg>diagram</svg>"), out)
}

func TestBrowserOnly_DecidesPerRender(t *testing.T) {
	wrapper := BrowserOnly{Component: func() Component { return Static("<b>live</b>") }}

	first, _ := wrapper.Render(ServerContext())
	second, _ := wrapper.Render(BrowserContext(Dark))
	third, _ := wrapper.Render(ServerContext())

	assert.Equal(t, template.HTML("<div></div>"), first)
	assert.Equal(t, template.HTML("<b>live</b>"), second)
	assert.Equal(t, template.HTML("<div></div>"), third)
}

func TestMermaid_RequiresColorMode(t *testing.T) {
	m := Mermaid{Source: "graph TD; A-->B"}

	for _, ctx := range []Context{ServerContext(), PrerenderContext(), {Pass: Browser}} {
		_, err := m.Render(ctx)
		assert.True(t, errors.Is(err, domain.ErrNoColorMode), "pass %s", ctx.Pass)
	}
}

func TestMermaid_RendersThemedDiagram(t *testing.T) {
	m := Mermaid{Source: "graph TD; A-->B", Themes: MermaidThemes{Light: "default", Dark: "dark"}}

	out, err := m.Render(BrowserContext(Dark))

	require.NoError(t, err)
	assert.Contains(t, string(out), `<pre class="mermaid" data-color-mode="dark">`)
	assert.Contains(t, string(out), `&#34;theme&#34;: &#34;dark&#34;`)
	assert.Contains(t, string(out), "A--&gt;B")
}

func TestMermaid_DefaultThemes(t *testing.T) {
	m := Mermaid{Source: "graph LR; X-->Y"}

	light, err := m.Render(BrowserContext(Light))
	require.NoError(t, err)
	assert.Contains(t, string(light), "neutral")

	dark, err := m.Render(BrowserContext(Dark))
	require.NoError(t, err)
	assert.Contains(t, string(dark), "forest")
}

func TestDiagram(t *testing.T) {
	d := Diagram("cluster-planning", 2, "graph TD; A-->B", DefaultMermaidThemes)

	placeholder, err := d.Render(ServerContext())
	require.NoError(t, err)
	assert.Equal(t, template.HTML(`<div data-hydrate="/fragments/diagram/cluster-planning/2"></div>`), placeholder)

	live, err := d.Render(BrowserContext(Light))
	require.NoError(t, err)
	assert.Contains(t, string(live), `class="mermaid"`)
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in   string
		want ColorMode
		ok   bool
	}{
		{"light", Light, true},
		{"Dark", Dark, true},
		{" dark ", Dark, true},
		{"", "", false},
		{"no-preference", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseColorMode(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
