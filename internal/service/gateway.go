package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spounge-ai/brainstormity/internal/adapters/llm"
	"github.com/spounge-ai/brainstormity/internal/domain"
	app_errors "github.com/spounge-ai/brainstormity/internal/errors"
	"github.com/spounge-ai/brainstormity/internal/validation"
	"github.com/spounge-ai/brainstormity/pkg/execution"
)

const (
	ReasoningProbeQuestion = "Are you a reasoning model?"

	OpBrainstorm = "brainstorm"
	OpTest       = "test_reasoning"

	HealthStatusHealthy = "healthy"
)

// CredentialVerifier resolves bearer tokens; KeyRegistry is the production implementation.
type CredentialVerifier interface {
	Lookup(ctx context.Context, token string) (domain.ClientIdentity, error)
}

type GatewayConfig struct {
	ProviderTimeout time.Duration
	// CredentialPresent reports whether a provider credential was configured, even if the
	// client could not be built from it.
	CredentialPresent bool
}

// ReasoningProbe is the outcome of the fixed self-description prompt.
type ReasoningProbe struct {
	Question string
	Response string
	Model    string
}

type HealthReport struct {
	Status                    string
	ClientInitialized         bool
	ProviderCredentialPresent bool
}

// Gateway authenticates brainstorm requests and forwards them to the text generation provider.
// A nil provider means no provider session exists; every protected call then fails with
// ErrServiceUnavailable.
type Gateway struct {
	verifier  CredentialVerifier
	provider  llm.Provider
	validator *validation.RequestValidator
	audit     domain.AuditLogger
	logger    *slog.Logger
	cfg       GatewayConfig
}

func NewGateway(
	verifier CredentialVerifier,
	provider llm.Provider,
	validator *validation.RequestValidator,
	audit domain.AuditLogger,
	logger *slog.Logger,
	cfg GatewayConfig,
) *Gateway {
	if audit == nil {
		audit = nopAuditLogger{}
	}
	return &Gateway{
		verifier:  verifier,
		provider:  provider,
		validator: validator,
		audit:     audit,
		logger:    logger,
		cfg:       cfg,
	}
}

// session is the only place the presence of a provider is checked.
func (g *Gateway) session() (llm.Provider, error) {
	if g.provider == nil {
		return nil, app_errors.WithMessage(app_errors.ErrServiceUnavailable, "Service not properly configured")
	}
	return g.provider, nil
}

// Ready reports ErrServiceUnavailable when no provider session exists.
func (g *Gateway) Ready() error {
	_, err := g.session()
	return err
}

// HandleBrainstorm forwards query as a single user message and returns the first choice verbatim.
func (g *Gateway) HandleBrainstorm(ctx context.Context, credential, query string) (string, error) {
	provider, err := g.session()
	if err != nil {
		return "", err
	}

	if err := g.validator.ValidateQuery(query); err != nil {
		return "", err
	}

	client, err := g.authenticate(ctx, credential, OpBrainstorm)
	if err != nil {
		return "", err
	}

	resp, err := g.generate(ctx, provider, query)
	if err != nil {
		g.audit.AuditLog(ctx, client, OpBrainstorm, false, err)
		return "", app_errors.WithMessage(app_errors.ErrUpstream,
			"Error processing brainstorm request: %s", providerMessage(err))
	}

	g.audit.AuditLog(ctx, client, OpBrainstorm, true, nil)
	return resp.Content, nil
}

// TestReasoning sends the fixed probe question through the same pipeline.
func (g *Gateway) TestReasoning(ctx context.Context, credential string) (*ReasoningProbe, error) {
	provider, err := g.session()
	if err != nil {
		return nil, err
	}

	client, err := g.authenticate(ctx, credential, OpTest)
	if err != nil {
		return nil, err
	}

	resp, err := g.generate(ctx, provider, ReasoningProbeQuestion)
	if err != nil {
		g.audit.AuditLog(ctx, client, OpTest, false, err)
		return nil, app_errors.WithMessage(app_errors.ErrUpstream,
			"Error in test endpoint: %s", providerMessage(err))
	}

	g.audit.AuditLog(ctx, client, OpTest, true, nil)
	return &ReasoningProbe{
		Question: ReasoningProbeQuestion,
		Response: resp.Content,
		Model:    provider.Model(),
	}, nil
}

func (g *Gateway) Health() HealthReport {
	return HealthReport{
		Status:                    HealthStatusHealthy,
		ClientInitialized:         g.provider != nil,
		ProviderCredentialPresent: g.cfg.CredentialPresent,
	}
}

func (g *Gateway) authenticate(ctx context.Context, credential, operation string) (domain.ClientIdentity, error) {
	client, err := g.verifier.Lookup(ctx, credential)
	if err != nil {
		if errors.Is(err, app_errors.ErrUnauthorized) {
			g.audit.AuditLog(ctx, "", operation, false, err)
		}
		return "", err
	}
	return client, nil
}

func (g *Gateway) generate(ctx context.Context, provider llm.Provider, prompt string) (*llm.Response, error) {
	return execution.WithTimeout(ctx, g.cfg.ProviderTimeout, func(ctx context.Context) (*llm.Response, error) {
		return provider.Generate(ctx, llm.UserPrompt(prompt))
	})
}

// providerMessage extracts the client-safe text of a provider failure.
func providerMessage(err error) string {
	var pErr *llm.ProviderError
	switch {
	case errors.As(err, &pErr) && pErr.Message != "":
		return pErr.Message
	case errors.Is(err, context.DeadlineExceeded):
		return "provider request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled before the provider responded"
	default:
		return "provider request failed"
	}
}
