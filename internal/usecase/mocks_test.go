package usecase

import (
	"context"
	"sync"

	"docs-portal/internal/domain"
)

// mockIdentity implements domain.IdentityClient for testing. It publishes
// state changes to registered handlers like the real binding does.
type mockIdentity struct {
	mu       sync.Mutex
	state    domain.SessionState
	handlers map[int]domain.StateHandler
	nextID   int

	err        error
	signOutErr error
	email      string
	release    chan struct{}
	entered    chan struct{}
	calls      []string
	closed     bool
	onSignOut  func()
}

func newMockIdentity() *mockIdentity {
	return &mockIdentity{handlers: make(map[int]domain.StateHandler)}
}

func (m *mockIdentity) record(op string) {
	m.mu.Lock()
	m.calls = append(m.calls, op)
	m.mu.Unlock()
}

func (m *mockIdentity) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockIdentity) block(ctx context.Context) error {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.release == nil {
		return nil
	}
	select {
	case <-m.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockIdentity) SignIn(ctx context.Context, email, _ string) error {
	m.record("sign_in")
	if err := m.block(ctx); err != nil {
		return err
	}
	if m.err != nil {
		return m.err
	}
	m.publish(domain.SignedIn(domain.Identity{UserID: "user-1", Email: email}))
	return nil
}

func (m *mockIdentity) SignUp(ctx context.Context, email, _ string) error {
	m.record("sign_up")
	if err := m.block(ctx); err != nil {
		return err
	}
	return m.err
}

func (m *mockIdentity) SignOut(_ context.Context) error {
	m.record("sign_out")
	if m.onSignOut != nil {
		m.onSignOut()
	}
	m.publish(domain.SignedOut())
	return m.signOutErr
}

func (m *mockIdentity) Refresh(_ context.Context) error {
	m.record("refresh")
	return nil
}

func (m *mockIdentity) OnStateChange(handler domain.StateHandler) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.handlers[id] = handler
	state := m.state
	m.mu.Unlock()

	handler(state)
	return func() {
		m.mu.Lock()
		delete(m.handlers, id)
		m.mu.Unlock()
	}
}

func (m *mockIdentity) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

func (m *mockIdentity) publish(state domain.SessionState) {
	m.mu.Lock()
	changed := !m.state.Equal(state)
	m.state = state
	handlers := make([]domain.StateHandler, 0, len(m.handlers))
	for _, h := range m.handlers {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, h := range handlers {
		h(state)
	}
}

func (m *mockIdentity) HandlerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers)
}

// mockFactory implements domain.IdentityClientFactory for testing.
type mockFactory struct {
	created []*mockIdentity
}

func (f *mockFactory) NewClient() domain.IdentityClient {
	m := newMockIdentity()
	f.created = append(f.created, m)
	return m
}

// mockStore implements BrowserStore for testing.
type mockStore struct {
	entries map[string]*Browser
}

func newMockStore() *mockStore {
	return &mockStore{entries: make(map[string]*Browser)}
}

func (s *mockStore) Get(id string) (*Browser, bool) {
	b, ok := s.entries[id]
	return b, ok
}

func (s *mockStore) GetOrCreate(id string, create func() *Browser) *Browser {
	if b, ok := s.entries[id]; ok {
		return b
	}
	b := create()
	s.entries[id] = b
	return b
}

// mockCSRFGenerator implements domain.CSRFTokenGenerator for testing.
type mockCSRFGenerator struct {
	token     string
	err       error
	verifyErr error
}

func (m *mockCSRFGenerator) Generate(_ string) (string, error) {
	return m.token, m.err
}

func (m *mockCSRFGenerator) Verify(_, _ string) error {
	return m.verifyErr
}
