//go:build contract

package gateway

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"docs-portal/internal/domain"

	"github.com/pact-foundation/pact-go/v2/consumer"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKratosPact(t *testing.T) *consumer.V4HTTPMockProvider {
	t.Helper()
	provider, err := consumer.NewV4Pact(consumer.MockHTTPProviderConfig{
		Consumer: "docs-portal",
		Provider: "kratos",
		PactDir:  "./pacts",
	})
	require.NoError(t, err)
	return provider
}

func TestKratosContract_WhoAmI(t *testing.T) {
	provider := newKratosPact(t)

	err := provider.
		AddInteraction().
		Given("a session exists for user@example.com").
		UponReceiving("a whoami request with a session token").
		WithRequest(http.MethodGet, "/sessions/whoami", func(b *consumer.V4RequestBuilder) {
			b.Header("X-Session-Token", matchers.String("ory_st_valid"))
		}).
		WillRespondWith(http.StatusOK, func(b *consumer.V4ResponseBuilder) {
			b.Header("Content-Type", matchers.String("application/json"))
			b.JSONBody(matchers.Map{
				"id":         matchers.Like("session-1"),
				"active":     matchers.Like(true),
				"expires_at": matchers.Like("2026-10-16T12:00:00Z"),
				"identity": matchers.Map{
					"id":         matchers.Like("identity-1"),
					"schema_id":  matchers.Like("default"),
					"schema_url": matchers.Like("http://kratos/schemas/default"),
					"traits": matchers.Map{
						"email": matchers.Like("user@example.com"),
					},
				},
			})
		}).
		ExecuteTest(t, func(config consumer.MockServerConfig) error {
			gw := NewKratosGateway(domain.IdentityConfig{
				AuthDomain: fmt.Sprintf("http://%s:%d", config.Host, config.Port),
			}, 5*time.Second)

			session, err := gw.WhoAmI(context.Background(), "ory_st_valid")
			if err != nil {
				return err
			}
			assert.Equal(t, "user@example.com", session.Identity.Email)
			return nil
		})

	assert.NoError(t, err)
}

func TestKratosContract_Logout(t *testing.T) {
	provider := newKratosPact(t)

	err := provider.
		AddInteraction().
		Given("a session exists for user@example.com").
		UponReceiving("a native logout request").
		WithRequest(http.MethodDelete, "/self-service/logout/api", func(b *consumer.V4RequestBuilder) {
			b.JSONBody(matchers.Map{
				"session_token": matchers.Like("ory_st_valid"),
			})
		}).
		WillRespondWith(http.StatusNoContent).
		ExecuteTest(t, func(config consumer.MockServerConfig) error {
			gw := NewKratosGateway(domain.IdentityConfig{
				AuthDomain: fmt.Sprintf("http://%s:%d", config.Host, config.Port),
			}, 5*time.Second)
			return gw.SignOut(context.Background(), "ory_st_valid")
		})

	assert.NoError(t, err)
}
