package handler

import (
	"context"
	"html/template"
	"log/slog"

	"docs-portal/internal/site"
	"docs-portal/internal/usecase"

	"github.com/labstack/echo/v4"
)

// widgetView is what the auth-status fragment renders.
type widgetView struct {
	Kind  string
	Email string
	CSRF  string
}

// formView is what the auth form page renders. Passwords are never
// rendered back.
type formView struct {
	Heading string
	Action  string
	CSRF    string
	Email   string
	Error   string
}

// sidebarEntry is one sidebar link or category.
type sidebarEntry struct {
	Label     string
	DocID     string
	Active    bool
	Collapsed bool
	Items     []sidebarEntry
}

// pageData is the data every page template receives.
type pageData struct {
	Site    *site.Config
	Title   string
	Widget  widgetView
	Form    *formView
	Sidebar []sidebarEntry
	Body    template.HTML
	Status  int
	Message string
}

// Layout builds the parts every page shares: site chrome and the
// auth-status widget for the requesting browser.
type Layout struct {
	site   *site.Config
	csrf   *usecase.GenerateCSRF
	logger *slog.Logger
}

// NewLayout creates a Layout.
func NewLayout(cfg *site.Config, csrf *usecase.GenerateCSRF, logger *slog.Logger) *Layout {
	return &Layout{site: cfg, csrf: csrf, logger: logger}
}

// Site returns the site config.
func (l *Layout) Site() *site.Config { return l.site }

// Page returns the shared page data for the browser behind c.
func (l *Layout) Page(c echo.Context, title string) pageData {
	return pageData{
		Site:   l.site,
		Title:  title,
		Widget: l.Widget(c.Request().Context(), BrowserFrom(c)),
	}
}

// StaticPage returns page data for a page rendered with no browser behind
// it. The widget shows the signed-out links.
func (l *Layout) StaticPage(title string) pageData {
	return pageData{
		Site:   l.site,
		Title:  title,
		Widget: toWidgetView(usecase.View{Kind: usecase.ViewSignedOut}, ""),
	}
}

// Widget mounts a status widget for browser just long enough to read its
// current view.
func (l *Layout) Widget(ctx context.Context, browser *usecase.Browser) widgetView {
	if browser == nil {
		return toWidgetView(usecase.View{Kind: usecase.ViewSignedOut}, "")
	}
	w := usecase.NewStatusWidget(browser.Identity, l.logger)
	w.Mount()
	view := w.View()
	w.Unmount()
	return toWidgetView(view, l.token(ctx, browser))
}

// Error renders the error page.
func (l *Layout) Error(c echo.Context, status int, message string) error {
	page := l.Page(c, message)
	page.Status = status
	page.Message = message
	return c.Render(status, pageError, page)
}

func (l *Layout) token(ctx context.Context, browser *usecase.Browser) string {
	token, err := l.csrf.Execute(ctx, browser.ID)
	if err != nil {
		l.logger.ErrorContext(ctx, "csrf token unavailable", "error", err)
		return ""
	}
	return token
}

func toWidgetView(v usecase.View, csrf string) widgetView {
	return widgetView{Kind: v.Kind.String(), Email: v.Email, CSRF: csrf}
}
