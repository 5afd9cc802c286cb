package render

import "html/template"

// BrowserOnly keeps a component out of every non-browser pass. Component is
// a constructor so the wrapped component is not even built outside the
// browser.
type BrowserOnly struct {
	Fallback  Component
	Component func() Component
}

// Render renders Fallback (an empty div when nil) unless ctx is a browser
// pass, in which case the wrapped component is built and rendered.
func (b BrowserOnly) Render(ctx Context) (template.HTML, error) {
	if !ctx.InBrowser() || b.Component == nil {
		fallback := b.Fallback
		if fallback == nil {
			fallback = EmptyDiv
		}
		return fallback.Render(ctx)
	}
	return b.Component().Render(ctx)
}
