package usecase

import (
	"log/slog"

	"docs-portal/internal/domain"

	"github.com/google/uuid"
)

// Browser is everything the portal keeps for one visiting browser: its
// identity binding and one instance of each auth form.
type Browser struct {
	ID       string
	Identity domain.IdentityClient
	Login    *AuthForm
	Register *AuthForm
}

// Close releases the browser's identity binding.
func (b *Browser) Close() {
	if c, ok := b.Identity.(interface{ Close() }); ok {
		c.Close()
	}
}

// BrowserStore holds live browsers by ID.
type BrowserStore interface {
	Get(id string) (*Browser, bool)
	GetOrCreate(id string, create func() *Browser) *Browser
}

// ResolveBrowser finds the browser for a cookie, creating one on first visit.
type ResolveBrowser struct {
	store      BrowserStore
	identities domain.IdentityClientFactory
	logger     *slog.Logger
}

// NewResolveBrowser creates a new ResolveBrowser usecase.
func NewResolveBrowser(s BrowserStore, f domain.IdentityClientFactory, l *slog.Logger) *ResolveBrowser {
	return &ResolveBrowser{store: s, identities: f, logger: l}
}

// Execute returns the browser for browserID. An empty browserID, or one the
// store has already evicted, yields a browser with a fresh identity binding;
// created reports whether the caller must hand out a new cookie.
func (uc *ResolveBrowser) Execute(browserID string) (browser *Browser, created bool) {
	if browserID == "" {
		browserID = uuid.NewString()
		created = true
	}

	browser = uc.store.GetOrCreate(browserID, func() *Browser {
		uc.logger.Debug("new browser session", "browser_id", browserID)
		return uc.newBrowser(browserID)
	})
	return browser, created
}

func (uc *ResolveBrowser) newBrowser(id string) *Browser {
	client := uc.identities.NewClient()
	return &Browser{
		ID:       id,
		Identity: client,
		Login:    NewAuthForm(LoginForm, client, uc.logger),
		Register: NewAuthForm(RegisterForm, client, uc.logger),
	}
}
