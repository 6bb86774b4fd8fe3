package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spounge-ai/brainstormity/internal/adapters/llm"
	"github.com/spounge-ai/brainstormity/internal/domain"
	app_errors "github.com/spounge-ai/brainstormity/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, provider llm.Provider, cfg GatewayConfig) (*Gateway, *KeyRegistry, *auditRecorder) {
	t.Helper()
	reg, _ := newTestRegistry(t)
	_, err := reg.Seed(context.Background(), "tok-A", "frontend")
	require.NoError(t, err)

	audit := &auditRecorder{}
	return NewGateway(reg, provider, newTestValidator(t), audit, discardLogger, cfg), reg, audit
}

func TestGateway_BrainstormReturnsFirstChoiceVerbatim(t *testing.T) {
	provider := &fakeProvider{}
	gw, _, audit := newTestGateway(t, provider, GatewayConfig{CredentialPresent: true})

	text, err := gw.HandleBrainstorm(context.Background(), "tok-A", "ideas for a picnic")
	require.NoError(t, err)
	assert.Equal(t, "T", text)

	require.EqualValues(t, 1, provider.calls.Load())
	req := provider.prompts[0]
	assert.Equal(t, 1, req.Choices)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.RoleUser, req.Messages[0].Role)
	assert.Equal(t, "ideas for a picnic", req.Messages[0].Content)

	require.Len(t, audit.events, 1)
	assert.Equal(t, recordedAudit{client: "frontend", operation: OpBrainstorm, success: true}, audit.events[0])
}

func TestGateway_InvalidQueryNeverReachesProvider(t *testing.T) {
	provider := &fakeProvider{}
	gw, _, _ := newTestGateway(t, provider, GatewayConfig{})

	for _, q := range []string{"", "   ", "\n\t", strings.Repeat("x", 8001)} {
		_, err := gw.HandleBrainstorm(context.Background(), "tok-A", q)
		assert.ErrorIs(t, err, app_errors.ErrBadRequest)
	}
	assert.Zero(t, provider.calls.Load())
}

func TestGateway_UnknownTokenNeverReachesProvider(t *testing.T) {
	provider := &fakeProvider{}
	gw, _, audit := newTestGateway(t, provider, GatewayConfig{})

	for _, tok := range []string{"", "tok-B", "tok-a"} {
		_, err := gw.HandleBrainstorm(context.Background(), tok, "hello")
		assert.ErrorIs(t, err, app_errors.ErrUnauthorized)
	}
	assert.Zero(t, provider.calls.Load())

	for _, e := range audit.events {
		assert.False(t, e.success)
	}
}

func TestGateway_RevokedTokenRejected(t *testing.T) {
	provider := &fakeProvider{}
	gw, reg, _ := newTestGateway(t, provider, GatewayConfig{})

	require.NoError(t, reg.Revoke(context.Background(), testAdminKey, "tok-A"))

	_, err := gw.HandleBrainstorm(context.Background(), "tok-A", "hello")
	assert.ErrorIs(t, err, app_errors.ErrUnauthorized)
	assert.Zero(t, provider.calls.Load())
}

func TestGateway_ProviderFailureIsUpstream(t *testing.T) {
	provider := &fakeProvider{generate: func(ctx context.Context, req *llm.Request) (*llm.Response, error) {
		return nil, &llm.ProviderError{Provider: "fake", Message: "model overloaded", Err: errors.New("503 from https://router.example/v1")}
	}}
	gw, _, audit := newTestGateway(t, provider, GatewayConfig{})

	_, err := gw.HandleBrainstorm(context.Background(), "tok-A", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, app_errors.ErrUpstream)

	var public *app_errors.PublicError
	require.True(t, errors.As(err, &public))
	assert.Equal(t, "Error processing brainstorm request: model overloaded", public.Message)
	assert.NotContains(t, public.Message, "router.example")

	require.Len(t, audit.events, 1)
	assert.False(t, audit.events[0].success)
}

func TestGateway_ProviderTimeout(t *testing.T) {
	provider := &fakeProvider{generate: func(ctx context.Context, req *llm.Request) (*llm.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	gw, _, _ := newTestGateway(t, provider, GatewayConfig{ProviderTimeout: 20 * time.Millisecond})

	_, err := gw.HandleBrainstorm(context.Background(), "tok-A", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, app_errors.ErrUpstream)

	var public *app_errors.PublicError
	require.True(t, errors.As(err, &public))
	assert.Equal(t, "Error processing brainstorm request: provider request timed out", public.Message)
}

func TestGateway_CallerCancellationReachesProvider(t *testing.T) {
	started := make(chan struct{})
	provider := &fakeProvider{generate: func(ctx context.Context, req *llm.Request) (*llm.Response, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	gw, _, _ := newTestGateway(t, provider, GatewayConfig{ProviderTimeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := gw.HandleBrainstorm(ctx, "tok-A", "hello")
	assert.ErrorIs(t, err, app_errors.ErrUpstream)
}

func TestGateway_NoSessionIsUnavailableRegardlessOfInput(t *testing.T) {
	gw, _, _ := newTestGateway(t, nil, GatewayConfig{CredentialPresent: false})

	cases := []struct{ token, query string }{
		{"tok-A", "hello"},
		{"", "hello"},
		{"tok-unknown", ""},
		{"", ""},
	}
	for _, c := range cases {
		_, err := gw.HandleBrainstorm(context.Background(), c.token, c.query)
		assert.ErrorIs(t, err, app_errors.ErrServiceUnavailable)
	}

	_, err := gw.TestReasoning(context.Background(), "tok-A")
	assert.ErrorIs(t, err, app_errors.ErrServiceUnavailable)
}

func TestGateway_TestReasoning(t *testing.T) {
	provider := &fakeProvider{generate: func(ctx context.Context, req *llm.Request) (*llm.Response, error) {
		return &llm.Response{Content: "Yes, I reason step by step."}, nil
	}}
	gw, _, _ := newTestGateway(t, provider, GatewayConfig{})

	probe, err := gw.TestReasoning(context.Background(), "tok-A")
	require.NoError(t, err)
	assert.Equal(t, ReasoningProbeQuestion, probe.Question)
	assert.Equal(t, "Yes, I reason step by step.", probe.Response)
	assert.Equal(t, "fake-model", probe.Model)
	assert.Equal(t, ReasoningProbeQuestion, provider.prompts[0].Messages[0].Content)

	_, err = gw.TestReasoning(context.Background(), "tok-B")
	assert.ErrorIs(t, err, app_errors.ErrUnauthorized)
}

func TestGateway_TestReasoningFailure(t *testing.T) {
	provider := &fakeProvider{generate: func(ctx context.Context, req *llm.Request) (*llm.Response, error) {
		return nil, &llm.ProviderError{Provider: "fake", Message: "provider unreachable"}
	}}
	gw, _, _ := newTestGateway(t, provider, GatewayConfig{})

	_, err := gw.TestReasoning(context.Background(), "tok-A")
	var public *app_errors.PublicError
	require.True(t, errors.As(err, &public))
	assert.Equal(t, app_errors.ErrUpstream, public.Kind)
	assert.Equal(t, "Error in test endpoint: provider unreachable", public.Message)
}

func TestGateway_Health(t *testing.T) {
	gw, _, _ := newTestGateway(t, &fakeProvider{}, GatewayConfig{CredentialPresent: true})
	assert.Equal(t, HealthReport{Status: HealthStatusHealthy, ClientInitialized: true, ProviderCredentialPresent: true}, gw.Health())

	gw, _, _ = newTestGateway(t, nil, GatewayConfig{CredentialPresent: false})
	assert.Equal(t, HealthReport{Status: HealthStatusHealthy}, gw.Health())
}

func TestGateway_ConcurrentRequests(t *testing.T) {
	provider := &fakeProvider{}
	gw, _, _ := newTestGateway(t, provider, GatewayConfig{})

	const n = 50
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := gw.HandleBrainstorm(context.Background(), "tok-A", "hello")
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		assert.NoError(t, <-errs)
	}
	assert.EqualValues(t, n, provider.calls.Load())
}

var _ domain.AuditLogger = (*auditRecorder)(nil)
