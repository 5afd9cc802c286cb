package domain

import "context"

// IdentityGateway talks to the external identity provider. It is stateless;
// the caller owns the session token.
type IdentityGateway interface {
	SignIn(ctx context.Context, email, password string) (*ProviderSession, error)
	SignUp(ctx context.Context, email, password string) (*ProviderSession, error)
	SignOut(ctx context.Context, token string) error
	WhoAmI(ctx context.Context, token string) (*ProviderSession, error)
}

// StateHandler receives session state notifications.
type StateHandler func(SessionState)

// IdentityClient is the per-browser identity capability the forms and the
// status widget are given.
type IdentityClient interface {
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	OnStateChange(handler StateHandler) (unsubscribe func())
	Refresh(ctx context.Context) error
}

// IdentityClientFactory creates one IdentityClient per browser.
type IdentityClientFactory interface {
	NewClient() IdentityClient
}

// BrowserTokenIssuer signs and verifies the browser id cookie.
type BrowserTokenIssuer interface {
	Issue(browserID string) (string, error)
	Parse(token string) (string, error)
}

// CSRFTokenGenerator generates and verifies CSRF tokens bound to a browser id.
type CSRFTokenGenerator interface {
	Generate(browserID string) (string, error)
	Verify(browserID, token string) error
}
