package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"docs-portal/internal/domain"
	"docs-portal/metrics"
)

// FormKind selects which identity operation a form submits to.
type FormKind string

const (
	LoginForm    FormKind = "login"
	RegisterForm FormKind = "register"
)

// SuccessRedirect is where the browser goes after a successful submit.
func (k FormKind) SuccessRedirect() string {
	if k == RegisterForm {
		return "/login"
	}
	return "/"
}

// FormPhase is the submission state of an auth form.
type FormPhase int

const (
	PhaseIdle FormPhase = iota
	PhaseSubmitting
	PhaseSuccess
	PhaseFailed
)

func (p FormPhase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// FormState is what the form template renders. Password is retained across
// a failed submit but never written back into markup.
type FormState struct {
	Phase    FormPhase
	Email    string
	Password string
	Error    string
}

// AuthForm is one login or register form instance, scoped to a browser.
type AuthForm struct {
	kind     FormKind
	identity domain.IdentityClient
	logger   *slog.Logger

	mu    sync.Mutex
	state FormState

	// OnTransition, when set, observes every phase change.
	OnTransition func(from, to FormPhase)
}

// NewAuthForm creates an idle form.
func NewAuthForm(kind FormKind, identity domain.IdentityClient, logger *slog.Logger) *AuthForm {
	return &AuthForm{kind: kind, identity: identity, logger: logger}
}

// Kind returns the form kind.
func (f *AuthForm) Kind() FormKind { return f.kind }

// State returns a copy of the current form state.
func (f *AuthForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Reset starts a new form lifetime. A submit still in flight keeps its state.
func (f *AuthForm) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.Phase == PhaseSubmitting {
		return
	}
	f.setPhase(PhaseIdle)
	f.state = FormState{}
}

// Submit sends the credentials to the identity provider. On success it
// returns the path to navigate to. On failure the provider's message is
// stored in the form state, the form returns to idle with its fields kept,
// and the error is returned.
func (f *AuthForm) Submit(ctx context.Context, email, password string) (string, error) {
	f.mu.Lock()
	if f.state.Phase == PhaseSubmitting {
		f.mu.Unlock()
		metrics.RecordFormSubmission(string(f.kind), "rejected")
		return "", domain.ErrSubmissionInFlight
	}
	f.state.Email = email
	f.state.Password = password
	f.state.Error = ""
	f.setPhase(PhaseSubmitting)
	f.mu.Unlock()

	err := f.send(ctx, strings.TrimSpace(email), password)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.setPhase(PhaseFailed)
		f.state.Error = domain.UserMessage(err)
		f.setPhase(PhaseIdle)
		metrics.RecordFormSubmission(string(f.kind), "failed")
		f.logger.InfoContext(ctx, "auth form submit failed", "form", f.kind, "error", err)
		return "", err
	}

	f.setPhase(PhaseSuccess)
	metrics.RecordFormSubmission(string(f.kind), "ok")
	return f.kind.SuccessRedirect(), nil
}

func (f *AuthForm) send(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return domain.ErrMissingCredentials
	}
	if f.kind == RegisterForm {
		return f.identity.SignUp(ctx, email, password)
	}
	return f.identity.SignIn(ctx, email, password)
}

// setPhase must be called with mu held.
func (f *AuthForm) setPhase(next FormPhase) {
	prev := f.state.Phase
	f.state.Phase = next
	if f.OnTransition != nil && prev != next {
		f.OnTransition(prev, next)
	}
}
