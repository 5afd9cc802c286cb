package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"docs-portal/internal/domain"
	"docs-portal/metrics"
	"docs-portal/utils/logger"
)

// Binding is one browser's handle on the identity provider. It owns the
// provider session token and a cached copy of the session state, and pushes
// every state change to its subscribers in order.
//
// Handlers run on the goroutine that caused the change and must not call
// back into the Binding other than to unsubscribe.
// Implements domain.IdentityClient.
type Binding struct {
	gateway domain.IdentityGateway
	timeout time.Duration
	log     *logger.ContextLogger

	// deliver serialises transitions so handlers observe them in order.
	deliver sync.Mutex

	mu         sync.Mutex
	token      string
	state      domain.SessionState
	generation uint64
	expiry     *time.Timer
	handlers   map[uint64]domain.StateHandler
	nextID     uint64
	closed     bool
}

// NewBinding creates a signed-out binding.
func NewBinding(gateway domain.IdentityGateway, timeout time.Duration, l *slog.Logger) *Binding {
	return &Binding{
		gateway:  gateway,
		timeout:  timeout,
		log:      logger.NewContextLogger(l),
		handlers: make(map[uint64]domain.StateHandler),
	}
}

// SignIn authenticates with the provider and adopts the returned session.
// A SignOut that completes while the provider call is in flight wins: the new
// session is revoked and ErrSessionSuperseded returned.
func (b *Binding) SignIn(ctx context.Context, email, password string) error {
	gen := b.currentGeneration()
	session, err := b.call(ctx, "sign_in", func(ctx context.Context) (*domain.ProviderSession, error) {
		return b.gateway.SignIn(ctx, email, password)
	})
	if err != nil {
		return err
	}
	return b.adopt(ctx, session, gen)
}

// SignUp registers a new identity. When the provider signs the new identity
// in, the session is adopted the same way SignIn does.
func (b *Binding) SignUp(ctx context.Context, email, password string) error {
	gen := b.currentGeneration()
	session, err := b.call(ctx, "sign_up", func(ctx context.Context) (*domain.ProviderSession, error) {
		return b.gateway.SignUp(ctx, email, password)
	})
	if err != nil {
		return err
	}
	if session == nil || session.Token == "" {
		return nil
	}
	return b.adopt(ctx, session, gen)
}

// SignOut revokes the provider session. The local token is discarded and
// the absent state published even when revocation fails; the failure is
// still returned. A session adopted while revocation was in flight is
// revoked as well.
func (b *Binding) SignOut(ctx context.Context) error {
	b.mu.Lock()
	token := b.token
	b.mu.Unlock()

	var err error
	if token != "" {
		err = b.revoke(ctx, token)
	}

	_, replaced := b.transition(domain.SignedOut(), "", time.Time{}, 0, false)
	if replaced != "" && replaced != token {
		err = errors.Join(err, b.revoke(ctx, replaced))
	}
	return err
}

// OnStateChange registers handler, invokes it with the current state, and
// returns a function that unregisters it. The returned function is safe to
// call more than once.
func (b *Binding) OnStateChange(handler domain.StateHandler) func() {
	b.deliver.Lock()
	defer b.deliver.Unlock()

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if !b.closed {
		b.handlers[id] = handler
	}
	current := b.state
	b.mu.Unlock()

	handler(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

// Current returns the cached session state.
func (b *Binding) Current() domain.SessionState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Refresh asks the provider whether the cached session is still valid and
// publishes the answer when it differs from the cache. The answer is dropped
// if the binding signed in or out while the provider call was in flight.
func (b *Binding) Refresh(ctx context.Context) error {
	b.mu.Lock()
	token := b.token
	gen := b.generation
	b.mu.Unlock()

	if token == "" {
		return nil
	}

	session, err := b.call(ctx, "whoami", func(ctx context.Context) (*domain.ProviderSession, error) {
		return b.gateway.WhoAmI(ctx, token)
	})
	switch {
	case errors.Is(err, domain.ErrNoSession):
		b.transition(domain.SignedOut(), "", time.Time{}, gen, true)
		return nil
	case err != nil:
		return err
	}

	b.transition(domain.SignedIn(session.Identity), token, session.ExpiresAt, gen, true)
	return nil
}

// Subscribers returns the number of registered handlers.
func (b *Binding) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}

// Close stops the expiry timer and drops every handler. Later transitions
// are still cached but reach nobody.
func (b *Binding) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	if b.expiry != nil {
		b.expiry.Stop()
		b.expiry = nil
	}
	clear(b.handlers)
}

func (b *Binding) currentGeneration() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}

// adopt publishes session unless the binding moved on since gen. A session
// that lost the race is revoked so it does not outlive the sign-out.
func (b *Binding) adopt(ctx context.Context, session *domain.ProviderSession, gen uint64) error {
	if applied, _ := b.transition(domain.SignedIn(session.Identity), session.Token, session.ExpiresAt, gen, true); applied {
		return nil
	}
	_ = b.revoke(context.WithoutCancel(ctx), session.Token)
	return domain.ErrSessionSuperseded
}

func (b *Binding) revoke(ctx context.Context, token string) error {
	_, err := b.call(ctx, "sign_out", func(ctx context.Context) (*domain.ProviderSession, error) {
		return nil, b.gateway.SignOut(ctx, token)
	})
	return err
}

// transition replaces the cached state wholesale and notifies handlers when
// it changed. With guarded set, the transition only applies if the
// generation still equals gen. Every sign-out and every token change starts
// a new generation; a refresh confirming the current token does not.
// It reports whether the change applied and the token it replaced.
func (b *Binding) transition(next domain.SessionState, token string, expiresAt time.Time, gen uint64, guarded bool) (bool, string) {
	b.deliver.Lock()
	defer b.deliver.Unlock()

	b.mu.Lock()
	if guarded && b.generation != gen {
		b.mu.Unlock()
		return false, ""
	}
	replaced := b.token
	changed := !b.state.Equal(next)
	if token == "" || token != replaced {
		b.generation++
	}
	b.token = token
	b.state = next
	b.armExpiry(expiresAt)
	handlers := b.snapshot()
	b.mu.Unlock()

	if changed {
		for _, h := range handlers {
			h(next)
		}
	}
	return true, replaced
}

// armExpiry must be called with mu held.
func (b *Binding) armExpiry(expiresAt time.Time) {
	if b.expiry != nil {
		b.expiry.Stop()
		b.expiry = nil
	}
	if expiresAt.IsZero() || b.closed {
		return
	}

	gen := b.generation
	b.expiry = time.AfterFunc(time.Until(expiresAt), func() {
		b.log.WithContext(context.Background()).Info("identity session expired")
		b.transition(domain.SignedOut(), "", time.Time{}, gen, true)
	})
}

// snapshot must be called with mu held.
func (b *Binding) snapshot() []domain.StateHandler {
	ids := make([]uint64, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	handlers := make([]domain.StateHandler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.handlers[id])
	}
	return handlers
}

// call runs fn under the binding's timeout and records the outcome.
func (b *Binding) call(ctx context.Context, op string, fn func(context.Context) (*domain.ProviderSession, error)) (*domain.ProviderSession, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	ctx = logger.WithOperation(ctx, op)

	start := time.Now()
	session, err := fn(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrIdentityTimeout) {
		err = fmt.Errorf("%w: %s: %w", domain.ErrIdentityTimeout, op, err)
	}

	elapsed := time.Since(start)
	metrics.RecordIdentityOperation(op, outcome(err), elapsed.Seconds())
	if err != nil {
		b.log.LogError(ctx, "identity operation failed", err)
	} else {
		b.log.LogDuration(ctx, "identity operation completed", elapsed)
	}
	return session, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrIdentityTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrIdentityUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrNoSession):
		return "no_session"
	default:
		return "failed"
	}
}
