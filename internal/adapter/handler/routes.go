package handler

import (
	"github.com/labstack/echo/v4"
)

// Routes collects the portal's handlers and the middleware around them.
type Routes struct {
	BrowserSession *BrowserSession
	CSRF           *CSRFHandler
	Login          *AuthFormHandler
	Register       *AuthFormHandler
	Status         *StatusHandler
	Session        *SessionHandler
	Docs           *DocsHandler
	Health         *HealthHandler
	Internal       *InternalHandler

	// FormLimit throttles login, register and logout posts. Optional.
	FormLimit echo.MiddlewareFunc
	// InternalGuard protects /internal. Optional.
	InternalGuard []echo.MiddlewareFunc
}

// Mount registers every route on e.
func (r *Routes) Mount(e *echo.Echo) {
	e.GET("/health", r.Health.Handle)
	RegisterStatic(e)

	internal := e.Group("/internal", r.InternalGuard...)
	internal.GET("/stats", r.Internal.HandleStats)
	internal.GET("/metrics", r.Internal.HandleMetrics)

	// Diagram fragments are browser-pass renders and need no browser session.
	e.GET("/fragments/diagram/:id/:index", r.Docs.Diagram)

	browser := r.BrowserSession.Middleware()
	// FormLimit keys by browser, so it must run after BrowserSession.
	posts := []echo.MiddlewareFunc{browser}
	if r.FormLimit != nil {
		posts = append(posts, r.FormLimit)
	}
	posts = append(posts, r.CSRF.Require())

	for _, redirect := range r.Docs.layout.Site().Redirects {
		e.GET(redirect.From, r.Docs.Redirect, browser)
	}
	e.GET("/docs/:id", r.Docs.Page, browser)

	e.GET("/login", r.Login.Show, browser)
	e.POST("/login", r.Login.Submit, posts...)
	e.GET("/register", r.Register.Show, browser)
	e.POST("/register", r.Register.Submit, posts...)
	e.POST("/logout", r.Status.Logout, posts...)

	e.GET("/auth/status", r.Status.Fragment, browser)
	e.GET("/auth/status/stream", r.Status.Stream, browser)
	e.GET("/auth/session", r.Session.Handle, browser)
	e.GET("/csrf", r.CSRF.Handle, browser)
}
