package handler

import (
	"log/slog"
	"net/http"
	"time"

	"docs-portal/internal/domain"
	"docs-portal/internal/usecase"
	"docs-portal/utils/logger"

	"github.com/labstack/echo/v4"
)

// BrowserCookieName carries the signed browser id.
const BrowserCookieName = "docs_browser"

const browserContextKey = "browser"

// BrowserSession attaches the requesting browser to every request,
// handing out a signed cookie on the first visit.
type BrowserSession struct {
	tokens  domain.BrowserTokenIssuer
	resolve *usecase.ResolveBrowser
	ttl     time.Duration
	secure  bool
	logger  *slog.Logger
}

// NewBrowserSession creates the browser session middleware.
func NewBrowserSession(tokens domain.BrowserTokenIssuer, resolve *usecase.ResolveBrowser, ttl time.Duration, secure bool, l *slog.Logger) *BrowserSession {
	return &BrowserSession{tokens: tokens, resolve: resolve, ttl: ttl, secure: secure, logger: l}
}

// Middleware resolves the browser and stores it on the echo context.
func (m *BrowserSession) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			var browserID string
			if cookie, err := c.Cookie(BrowserCookieName); err == nil {
				id, err := m.tokens.Parse(cookie.Value)
				if err != nil {
					m.logger.DebugContext(ctx, "discarding browser cookie", "error", err)
				} else {
					browserID = id
				}
			}

			browser, created := m.resolve.Execute(browserID)
			if created {
				token, err := m.tokens.Issue(browser.ID)
				if err != nil {
					m.logger.ErrorContext(ctx, "failed to issue browser cookie", "error", err)
					return mapDomainError(err)
				}
				c.SetCookie(&http.Cookie{
					Name:     BrowserCookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(m.ttl.Seconds()),
					HttpOnly: true,
					Secure:   m.secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(browserContextKey, browser)
			c.SetRequest(c.Request().WithContext(logger.WithBrowserID(ctx, browser.ID)))
			return next(c)
		}
	}
}

// BrowserFrom returns the browser attached by BrowserSession, or nil.
func BrowserFrom(c echo.Context) *usecase.Browser {
	b, _ := c.Get(browserContextKey).(*usecase.Browser)
	return b
}

// requireBrowser returns the attached browser or a 401.
func requireBrowser(c echo.Context) (*usecase.Browser, error) {
	b := BrowserFrom(c)
	if b == nil {
		return nil, mapDomainError(domain.ErrBrowserTokenInvalid)
	}
	return b, nil
}
