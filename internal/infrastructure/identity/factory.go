package identity

import (
	"log/slog"
	"time"

	"docs-portal/internal/domain"
)

// Factory creates per-browser bindings that share one gateway. It is built
// once at startup and handed to whatever needs new bindings.
type Factory struct {
	gateway domain.IdentityGateway
	timeout time.Duration
	logger  *slog.Logger
}

// NewFactory creates a binding factory. timeout bounds every provider call.
func NewFactory(gateway domain.IdentityGateway, timeout time.Duration, logger *slog.Logger) *Factory {
	return &Factory{gateway: gateway, timeout: timeout, logger: logger}
}

// New returns a fresh signed-out binding.
func (f *Factory) New() *Binding {
	return NewBinding(f.gateway, f.timeout, f.logger)
}

// NewClient implements domain.IdentityClientFactory.
func (f *Factory) NewClient() domain.IdentityClient {
	return f.New()
}
