package handler

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed templates
var templateFS embed.FS

const (
	pageAuthForm   = "auth_form"
	pageDoc        = "doc"
	pageError      = "error"
	fragmentStatus = "auth_status"
)

// Renderer renders the portal's pages and fragments. Pages share the
// layout and the auth-status fragment; each page adds its own content.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	base, err := template.New("").ParseFS(templateFS, "templates/layout.html", "templates/auth_status.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &Renderer{pages: map[string]*template.Template{fragmentStatus: base}}
	for _, page := range []string{pageAuthForm, pageDoc, pageError} {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", page, err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+page+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.Execute(w, name, data)
}

// Execute renders page or fragment name without an echo context.
func (r *Renderer) Execute(w io.Writer, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	if name == fragmentStatus {
		return t.ExecuteTemplate(w, fragmentStatus, data)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
