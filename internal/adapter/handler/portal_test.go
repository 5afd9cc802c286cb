package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"docs-portal/internal/domain"
	"docs-portal/internal/infrastructure/cache"
	"docs-portal/internal/infrastructure/identity"
	"docs-portal/internal/infrastructure/token"
	"docs-portal/internal/site"
	"docs-portal/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGateway is a mock identity provider.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) SignIn(_ context.Context, email, password string) (*domain.ProviderSession, error) {
	args := m.Called(email, password)
	session, _ := args.Get(0).(*domain.ProviderSession)
	return session, args.Error(1)
}

func (m *MockGateway) SignUp(_ context.Context, email, password string) (*domain.ProviderSession, error) {
	args := m.Called(email, password)
	session, _ := args.Get(0).(*domain.ProviderSession)
	return session, args.Error(1)
}

func (m *MockGateway) SignOut(_ context.Context, token string) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *MockGateway) WhoAmI(_ context.Context, token string) (*domain.ProviderSession, error) {
	args := m.Called(token)
	session, _ := args.Get(0).(*domain.ProviderSession)
	return session, args.Error(1)
}

// testPortal is the full route table over the built-in site content, with
// only the identity provider mocked. configure hooks run before the routes
// are mounted.
type testPortal struct {
	e        *echo.Echo
	gateway  *MockGateway
	browsers *cache.BrowserCache[*usecase.Browser]
	tokens   *token.BrowserTokenIssuer
	csrf     *token.HMACCSRFGenerator
	docs     *DocsHandler
}

func newTestPortal(t *testing.T, configure ...func(*echo.Echo, *Routes)) *testPortal {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	siteCfg, err := site.LoadConfig("")
	require.NoError(t, err)
	fsys, err := site.DocsFS("")
	require.NoError(t, err)
	library, err := site.LoadLibrary(fsys, siteCfg.DocIDs())
	require.NoError(t, err)

	gateway := new(MockGateway)
	browsers := cache.NewBrowserCache[*usecase.Browser](100, time.Hour)
	t.Cleanup(browsers.Purge)

	tokens, err := token.NewBrowserTokenIssuer(token.BrowserConfig{
		Secret: strings.Repeat("k", 32),
		Issuer: "docs-portal-test",
		TTL:    time.Hour,
	})
	require.NoError(t, err)
	csrf := token.NewHMACCSRFGenerator("test-csrf-secret")

	renderer, err := NewRenderer()
	require.NoError(t, err)

	resolve := usecase.NewResolveBrowser(browsers, identity.NewFactory(gateway, time.Second, logger), logger)
	generate := usecase.NewGenerateCSRF(csrf, logger)
	layout := NewLayout(siteCfg, generate, logger)
	docs := NewDocsHandler(layout, library, renderer)

	routes := &Routes{
		BrowserSession: NewBrowserSession(tokens, resolve, time.Hour, false, logger),
		CSRF:           NewCSRFHandler(generate, usecase.NewVerifyCSRF(csrf, logger)),
		Login:          NewLoginHandler(layout),
		Register:       NewRegisterHandler(layout),
		Status:         NewStatusHandler(layout, renderer, time.Hour, time.Hour, logger),
		Session:        NewSessionHandler(layout),
		Docs:           docs,
		Health:         NewHealthHandler(library),
		Internal:       NewInternalHandler(browsers),
	}

	e := echo.New()
	e.Renderer = renderer
	for _, fn := range configure {
		fn(e, routes)
	}
	routes.Mount(e)

	return &testPortal{e: e, gateway: gateway, browsers: browsers, tokens: tokens, csrf: csrf, docs: docs}
}

// visitor is one browser with a valid cookie.
type visitor struct {
	id     string
	cookie *http.Cookie
	csrf   string
}

func (p *testPortal) newVisitor(t *testing.T) visitor {
	t.Helper()
	id := uuid.NewString()
	signed, err := p.tokens.Issue(id)
	require.NoError(t, err)
	csrf, err := p.csrf.Generate(id)
	require.NoError(t, err)
	return visitor{id: id, cookie: &http.Cookie{Name: BrowserCookieName, Value: signed}, csrf: csrf}
}

func (p *testPortal) get(v *visitor, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if v != nil {
		req.AddCookie(v.cookie)
	}
	rec := httptest.NewRecorder()
	p.e.ServeHTTP(rec, req)
	return rec
}

func (p *testPortal) post(v visitor, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(v.cookie)
	rec := httptest.NewRecorder()
	p.e.ServeHTTP(rec, req)
	return rec
}

func (v visitor) form(email, password string) url.Values {
	return url.Values{
		"email":       {email},
		"password":    {password},
		csrfFormField: {v.csrf},
	}
}

func signedInSession(email string) *domain.ProviderSession {
	return &domain.ProviderSession{
		Token:     "session-token",
		SessionID: "session-1",
		Identity:  domain.Identity{UserID: "user-1", Email: email},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}
