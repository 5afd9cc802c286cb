package domain

import "time"

// Identity represents a signed-in user as reported by the identity provider.
type Identity struct {
	UserID string
	Email  string
}

// ProviderSession is what the identity provider hands back after a
// successful sign-in or sign-up.
type ProviderSession struct {
	Token     string
	SessionID string
	Identity  Identity
	ExpiresAt time.Time
}

// SessionState is the binding's cached copy of the provider's session.
// The zero value is the absent state.
type SessionState struct {
	Identity *Identity
}

// SignedOut is the absent session state.
func SignedOut() SessionState { return SessionState{} }

// SignedIn returns a present session state for identity.
func SignedIn(identity Identity) SessionState {
	return SessionState{Identity: &identity}
}

// Present reports whether a signed-in identity is cached.
func (s SessionState) Present() bool { return s.Identity != nil }

// Email returns the signed-in email, or "" when absent.
func (s SessionState) Email() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Email
}

// Equal compares two states by identity.
func (s SessionState) Equal(other SessionState) bool {
	if s.Present() != other.Present() {
		return false
	}
	if !s.Present() {
		return true
	}
	return *s.Identity == *other.Identity
}
