package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spounge-ai/brainstormity/internal/adapters/llm"
	"github.com/spounge-ai/brainstormity/internal/domain"
	"github.com/spounge-ai/brainstormity/internal/infra/auth"
	"github.com/spounge-ai/brainstormity/internal/validation"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "admin-secret"

var discardLogger = slog.New(slog.DiscardHandler)

type fakeProvider struct {
	calls    atomic.Int32
	mu       sync.Mutex
	prompts  []*llm.Request
	generate func(ctx context.Context, req *llm.Request) (*llm.Response, error)
}

func (p *fakeProvider) Name() string  { return "fake" }
func (p *fakeProvider) Model() string { return "fake-model" }

func (p *fakeProvider) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.prompts = append(p.prompts, req)
	p.mu.Unlock()
	if p.generate != nil {
		return p.generate(ctx, req)
	}
	return &llm.Response{Content: "T"}, nil
}

type recordedAudit struct {
	client    domain.ClientIdentity
	operation string
	success   bool
}

type auditRecorder struct {
	mu     sync.Mutex
	events []recordedAudit
}

func (a *auditRecorder) AuditLog(ctx context.Context, client domain.ClientIdentity, operation string, success bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, recordedAudit{client: client, operation: operation, success: success})
}

func newTestValidator(t *testing.T) *validation.RequestValidator {
	t.Helper()
	v, err := validation.NewRequestValidator(0)
	require.NoError(t, err)
	return v
}

func newTestRegistry(t *testing.T, opts ...RegistryOption) (*KeyRegistry, *auth.InMemoryCredentialStore) {
	t.Helper()
	admin, err := auth.NewAdminAuthenticator(testAdminKey, "")
	require.NoError(t, err)
	store := auth.NewInMemoryCredentialStore()
	return NewKeyRegistry(store, admin, newTestValidator(t), discardLogger, opts...), store
}
