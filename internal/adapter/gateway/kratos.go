package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"docs-portal/internal/domain"

	kratos "github.com/ory/kratos-client-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const passwordMethod = "password"

// KratosGateway implements domain.IdentityGateway with Kratos native
// self-service flows. It holds no session state of its own.
type KratosGateway struct {
	client *kratos.APIClient
	tracer trace.Tracer
}

// NewKratosGateway creates a new Kratos gateway with tuned HTTP transport.
func NewKratosGateway(cfg domain.IdentityConfig, timeout time.Duration) *KratosGateway {
	configuration := kratos.NewConfiguration()
	configuration.Servers = []kratos.ServerConfiguration{
		{URL: BaseURL(cfg)},
	}
	configuration.UserAgent = "docs-portal"
	if cfg.AppID != "" {
		configuration.UserAgent = "docs-portal/" + cfg.AppID
	}
	if cfg.APIKey != "" {
		configuration.AddDefaultHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}
	configuration.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}

	return &KratosGateway{
		client: kratos.NewAPIClient(configuration),
		tracer: otel.Tracer("docs-portal/gateway"),
	}
}

// BaseURL resolves the public API endpoint from the identity record. An
// explicit auth domain wins; otherwise the project id names an Ory Network
// project.
func BaseURL(cfg domain.IdentityConfig) string {
	domainURL := strings.TrimRight(cfg.AuthDomain, "/")
	switch {
	case strings.HasPrefix(domainURL, "http://"), strings.HasPrefix(domainURL, "https://"):
		return domainURL
	case domainURL != "":
		return "https://" + domainURL
	case cfg.ProjectID != "":
		return fmt.Sprintf("https://%s.projects.oryapis.com", cfg.ProjectID)
	default:
		return ""
	}
}

// SignIn runs a native login flow with the password method.
func (g *KratosGateway) SignIn(ctx context.Context, email, password string) (*domain.ProviderSession, error) {
	ctx, span := g.tracer.Start(ctx, "kratos.sign_in")
	defer span.End()

	flow, resp, err := g.client.FrontendAPI.CreateNativeLoginFlow(ctx).Execute()
	if err != nil {
		return nil, g.fail(span, "sign_in", resp, err)
	}

	body := kratos.UpdateLoginFlowWithPasswordMethod{
		Identifier: email,
		Password:   password,
		Method:     passwordMethod,
	}
	result, resp, err := g.client.FrontendAPI.
		UpdateLoginFlow(ctx).
		Flow(flow.GetId()).
		UpdateLoginFlowBody(kratos.UpdateLoginFlowWithPasswordMethodAsUpdateLoginFlowBody(&body)).
		Execute()
	if err != nil {
		return nil, g.fail(span, "sign_in", resp, err)
	}

	session := result.GetSession()
	return toProviderSession(&session, result.GetSessionToken()), nil
}

// SignUp runs a native registration flow with the email trait. The returned
// session carries no token when the provider does not sign the new identity
// in.
func (g *KratosGateway) SignUp(ctx context.Context, email, password string) (*domain.ProviderSession, error) {
	ctx, span := g.tracer.Start(ctx, "kratos.sign_up")
	defer span.End()

	flow, resp, err := g.client.FrontendAPI.CreateNativeRegistrationFlow(ctx).Execute()
	if err != nil {
		return nil, g.fail(span, "sign_up", resp, err)
	}

	body := kratos.UpdateRegistrationFlowWithPasswordMethod{
		Method:   passwordMethod,
		Password: password,
		Traits:   map[string]interface{}{"email": email},
	}
	result, resp, err := g.client.FrontendAPI.
		UpdateRegistrationFlow(ctx).
		Flow(flow.GetId()).
		UpdateRegistrationFlowBody(kratos.UpdateRegistrationFlowWithPasswordMethodAsUpdateRegistrationFlowBody(&body)).
		Execute()
	if err != nil {
		return nil, g.fail(span, "sign_up", resp, err)
	}

	if session, ok := result.GetSessionOk(); ok && result.GetSessionToken() != "" {
		return toProviderSession(session, result.GetSessionToken()), nil
	}

	identity := result.GetIdentity()
	return &domain.ProviderSession{
		Identity: domain.Identity{
			UserID: identity.GetId(),
			Email:  emailTrait(identity.GetTraits()),
		},
	}, nil
}

// SignOut revokes the session token.
func (g *KratosGateway) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrNoSession
	}

	ctx, span := g.tracer.Start(ctx, "kratos.sign_out")
	defer span.End()

	resp, err := g.client.FrontendAPI.
		PerformNativeLogout(ctx).
		PerformNativeLogoutBody(*kratos.NewPerformNativeLogoutBody(token)).
		Execute()
	if err != nil {
		return g.fail(span, "sign_out", resp, err)
	}
	return nil
}

// WhoAmI returns the session behind token, or domain.ErrNoSession when the
// provider no longer recognises it.
func (g *KratosGateway) WhoAmI(ctx context.Context, token string) (*domain.ProviderSession, error) {
	if token == "" {
		return nil, domain.ErrNoSession
	}

	ctx, span := g.tracer.Start(ctx, "kratos.whoami")
	defer span.End()

	session, resp, err := g.client.FrontendAPI.ToSession(ctx).XSessionToken(token).Execute()
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, domain.ErrNoSession
		}
		return nil, g.fail(span, "whoami", resp, err)
	}

	if active, ok := session.GetActiveOk(); ok && !*active {
		return nil, domain.ErrNoSession
	}
	if !session.HasIdentity() {
		return nil, domain.ErrNoSession
	}

	return toProviderSession(session, token), nil
}

// fail records err on span and translates it into a domain error.
func (g *KratosGateway) fail(span trace.Span, op string, resp *http.Response, err error) error {
	translated := translateError(op, resp, err)
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	if resp != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	}
	return translated
}

func translateError(op string, resp *http.Response, err error) error {
	var timeoutErr interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &timeoutErr) && timeoutErr.Timeout()) {
		return fmt.Errorf("%w: %s", domain.ErrIdentityTimeout, op)
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	if status >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s returned status %d", domain.ErrIdentityUnavailable, op, status)
	}

	var apiErr *kratos.GenericOpenAPIError
	if errors.As(err, &apiErr) {
		message := providerMessage(apiErr.Body())
		if message == "" {
			message = apiErr.Error()
		}
		return &domain.OperationError{Op: op, Message: message, Status: status}
	}

	if resp == nil {
		return fmt.Errorf("%w: %w", domain.ErrIdentityUnavailable, err)
	}
	return &domain.OperationError{Op: op, Message: err.Error(), Status: status}
}

type uiText struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// providerErrorBody covers both flow responses (ui messages) and generic
// error responses.
type providerErrorBody struct {
	UI *struct {
		Messages []uiText `json:"messages"`
		Nodes    []struct {
			Messages []uiText `json:"messages"`
		} `json:"nodes"`
	} `json:"ui"`
	Error *struct {
		Message string `json:"message"`
		Reason  string `json:"reason"`
	} `json:"error"`
}

// providerMessage extracts the human-readable text from a Kratos error body.
func providerMessage(body []byte) string {
	var parsed providerErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return strings.TrimSpace(string(body))
	}

	if parsed.UI != nil {
		var texts []string
		for _, m := range parsed.UI.Messages {
			if m.Type == "error" && m.Text != "" {
				texts = append(texts, m.Text)
			}
		}
		for _, node := range parsed.UI.Nodes {
			for _, m := range node.Messages {
				if m.Type == "error" && m.Text != "" {
					texts = append(texts, m.Text)
				}
			}
		}
		if len(texts) > 0 {
			return strings.Join(texts, " ")
		}
	}

	if parsed.Error != nil {
		if parsed.Error.Reason != "" {
			return parsed.Error.Reason
		}
		return parsed.Error.Message
	}
	return ""
}

func toProviderSession(session *kratos.Session, token string) *domain.ProviderSession {
	identity := session.GetIdentity()
	return &domain.ProviderSession{
		Token:     token,
		SessionID: session.GetId(),
		Identity: domain.Identity{
			UserID: identity.GetId(),
			Email:  emailTrait(identity.GetTraits()),
		},
		ExpiresAt: session.GetExpiresAt(),
	}
}

func emailTrait(traits interface{}) string {
	if m, ok := traits.(map[string]interface{}); ok {
		if email, ok := m["email"].(string); ok {
			return email
		}
	}
	return ""
}
