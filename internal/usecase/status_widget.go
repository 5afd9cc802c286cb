package usecase

import (
	"context"
	"log/slog"
	"sync"

	"docs-portal/internal/domain"
	"docs-portal/metrics"
)

// ViewKind is what the auth-status widget currently shows.
type ViewKind int

const (
	// ViewSignedOut shows the login and register links.
	ViewSignedOut ViewKind = iota
	// ViewSignedIn shows the email and the logout control.
	ViewSignedIn
	// ViewLoggingOut is shown while a logout is in progress.
	ViewLoggingOut
)

func (k ViewKind) String() string {
	switch k {
	case ViewSignedIn:
		return "signed_in"
	case ViewLoggingOut:
		return "logging_out"
	default:
		return "signed_out"
	}
}

// View is one rendering of the widget.
type View struct {
	Kind  ViewKind
	Email string
}

// StatusWidget tracks a browser's identity state for the navbar.
type StatusWidget struct {
	identity domain.IdentityClient
	logger   *slog.Logger

	mu          sync.Mutex
	view        View
	mounted     bool
	unsubscribe func()
	changes     chan View
}

// NewStatusWidget creates an unmounted widget.
func NewStatusWidget(identity domain.IdentityClient, logger *slog.Logger) *StatusWidget {
	return &StatusWidget{
		identity: identity,
		logger:   logger,
		changes:  make(chan View, 1),
	}
}

// Mount subscribes to the identity binding. The current state is applied
// before Mount returns.
func (w *StatusWidget) Mount() {
	w.mu.Lock()
	if w.mounted {
		w.mu.Unlock()
		return
	}
	w.mounted = true
	w.mu.Unlock()

	unsubscribe := w.identity.OnStateChange(w.apply)
	metrics.StatusSubscribers.Inc()

	w.mu.Lock()
	w.unsubscribe = unsubscribe
	w.mu.Unlock()
}

// Unmount unsubscribes and closes the Changes channel.
func (w *StatusWidget) Unmount() {
	w.mu.Lock()
	if !w.mounted {
		w.mu.Unlock()
		return
	}
	w.mounted = false
	unsubscribe := w.unsubscribe
	w.unsubscribe = nil
	close(w.changes)
	w.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	metrics.StatusSubscribers.Dec()
}

// View returns the current rendering.
func (w *StatusWidget) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

// Changes delivers the latest view after each change. Intermediate views
// are dropped when the reader falls behind. Closed by Unmount.
func (w *StatusWidget) Changes() <-chan View {
	return w.changes
}

// Logout signs the browser out and returns where to navigate. The widget
// ends signed out whether or not the provider confirmed the revocation.
func (w *StatusWidget) Logout(ctx context.Context) string {
	w.set(View{Kind: ViewLoggingOut, Email: w.View().Email})

	if err := w.identity.SignOut(ctx); err != nil {
		w.logger.WarnContext(ctx, "logout failed at identity provider", "error", err)
	}

	w.set(View{Kind: ViewSignedOut})
	return "/"
}

func (w *StatusWidget) apply(state domain.SessionState) {
	if state.Present() {
		w.set(View{Kind: ViewSignedIn, Email: state.Email()})
		return
	}
	w.set(View{Kind: ViewSignedOut})
}

func (w *StatusWidget) set(v View) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.view == v {
		return
	}
	w.view = v
	if !w.mounted {
		return
	}
	select {
	case <-w.changes:
	default:
	}
	w.changes <- v
}
