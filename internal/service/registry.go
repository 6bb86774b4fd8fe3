package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spounge-ai/brainstormity/internal/domain"
	app_errors "github.com/spounge-ai/brainstormity/internal/errors"
	"github.com/spounge-ai/brainstormity/internal/infra/auth"
	"github.com/spounge-ai/brainstormity/internal/validation"
)

const (
	DefaultTokenPrefix = "bst_prod_"
	maxIssueAttempts   = 5

	OpIssue  = "issue_api_key"
	OpRevoke = "revoke_api_key"
	OpSeed   = "seed_api_key"
)

// IssuedKey is handed back exactly once; the registry only keeps the token's digest.
type IssuedKey struct {
	Token      string
	ClientName domain.ClientIdentity
	CreatedAt  time.Time
}

// KeyRegistry owns the set of valid API keys and the client label each one resolves to.
type KeyRegistry struct {
	store       domain.CredentialStore
	admin       *auth.AdminAuthenticator
	validator   *validation.RequestValidator
	audit       domain.AuditLogger
	logger      *slog.Logger
	tokenPrefix string
	generate    func(prefix string) (string, error)
	now         func() time.Time
}

type RegistryOption func(*KeyRegistry)

func WithTokenPrefix(prefix string) RegistryOption {
	return func(r *KeyRegistry) {
		r.tokenPrefix = prefix
	}
}

// WithTokenGenerator replaces the crypto/rand generator.
func WithTokenGenerator(gen func(prefix string) (string, error)) RegistryOption {
	return func(r *KeyRegistry) {
		r.generate = gen
	}
}

func WithAuditLogger(l domain.AuditLogger) RegistryOption {
	return func(r *KeyRegistry) {
		r.audit = l
	}
}

func NewKeyRegistry(
	store domain.CredentialStore,
	admin *auth.AdminAuthenticator,
	validator *validation.RequestValidator,
	logger *slog.Logger,
	opts ...RegistryOption,
) *KeyRegistry {
	r := &KeyRegistry{
		store:       store,
		admin:       admin,
		validator:   validator,
		audit:       nopAuditLogger{},
		logger:      logger,
		tokenPrefix: DefaultTokenPrefix,
		generate:    auth.GenerateToken,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup resolves a bearer token to its client label.
func (r *KeyRegistry) Lookup(ctx context.Context, token string) (domain.ClientIdentity, error) {
	if token == "" {
		return "", app_errors.WithMessage(app_errors.ErrUnauthorized, "Invalid or missing API key")
	}

	cred, err := r.store.Get(ctx, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			return "", app_errors.WithMessage(app_errors.ErrUnauthorized, "Invalid or missing API key")
		}
		return "", fmt.Errorf("credential lookup failed: %w", err)
	}

	return cred.ClientName, nil
}

// Authorize checks the admin credential for operation and audits a refusal.
// Transports call it before reading a request body.
func (r *KeyRegistry) Authorize(ctx context.Context, adminCredential, operation string) error {
	if err := r.admin.Verify(adminCredential); err != nil {
		r.audit.AuditLog(ctx, "", operation, false, err)
		return err
	}
	return nil
}

// Issue creates a new key for clientLabel after checking the admin credential.
func (r *KeyRegistry) Issue(ctx context.Context, adminCredential, clientLabel string) (*IssuedKey, error) {
	if err := r.admin.Verify(adminCredential); err != nil {
		r.audit.AuditLog(ctx, domain.ClientIdentity(clientLabel), OpIssue, false, err)
		return nil, err
	}

	if err := r.validator.ValidateClientLabel(clientLabel); err != nil {
		return nil, err
	}

	label := domain.ClientIdentity(clientLabel)

	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		token, err := r.generate(r.tokenPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to generate api key: %w", err)
		}

		cred := &domain.Credential{
			ID:         uuid.New(),
			TokenHash:  auth.HashToken(token),
			ClientName: label,
			CreatedAt:  r.now(),
		}

		err = r.store.Create(ctx, cred)
		if errors.Is(err, domain.ErrCredentialExists) {
			r.logger.WarnContext(ctx, "generated api key collided with an existing one, regenerating", "attempt", attempt)
			continue
		}
		if err != nil {
			r.audit.AuditLog(ctx, label, OpIssue, false, err)
			return nil, fmt.Errorf("failed to register api key: %w", err)
		}

		r.audit.AuditLog(ctx, label, OpIssue, true, nil)
		return &IssuedKey{Token: token, ClientName: label, CreatedAt: cred.CreatedAt}, nil
	}

	return nil, fmt.Errorf("failed to generate a unique api key after %d attempts", maxIssueAttempts)
}

// Revoke removes token from the registry. Revoking an unknown token succeeds.
func (r *KeyRegistry) Revoke(ctx context.Context, adminCredential, token string) error {
	if err := r.Authorize(ctx, adminCredential, OpRevoke); err != nil {
		return err
	}

	if token == "" {
		return app_errors.WithMessage(app_errors.ErrBadRequest, "api_key is required")
	}

	hash := auth.HashToken(token)

	var label domain.ClientIdentity
	if cred, err := r.store.Get(ctx, hash); err == nil {
		label = cred.ClientName
	} else if !errors.Is(err, domain.ErrCredentialNotFound) {
		return fmt.Errorf("credential lookup failed: %w", err)
	}

	if err := r.store.Delete(ctx, hash); err != nil {
		r.audit.AuditLog(ctx, label, OpRevoke, false, err)
		return fmt.Errorf("failed to revoke api key: %w", err)
	}

	r.audit.AuditLog(ctx, label, OpRevoke, true, nil)
	return nil
}

// Seed registers a key known ahead of time. It reports false when the key was already present.
func (r *KeyRegistry) Seed(ctx context.Context, token, clientLabel string) (bool, error) {
	if token == "" {
		return false, fmt.Errorf("seed key for %q is empty", clientLabel)
	}
	if err := r.validator.ValidateClientLabel(clientLabel); err != nil {
		return false, fmt.Errorf("seed key for %q: %w", clientLabel, err)
	}

	label := domain.ClientIdentity(clientLabel)
	err := r.store.Create(ctx, &domain.Credential{
		ID:         uuid.New(),
		TokenHash:  auth.HashToken(token),
		ClientName: label,
		CreatedAt:  r.now(),
	})
	if errors.Is(err, domain.ErrCredentialExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to seed api key for %q: %w", clientLabel, err)
	}

	r.audit.AuditLog(ctx, label, OpSeed, true, nil)
	return true, nil
}

// SeedAll registers every entry and returns how many were new.
func (r *KeyRegistry) SeedAll(ctx context.Context, entries []auth.SeedEntry) (int, error) {
	added := 0
	for _, e := range entries {
		ok, err := r.Seed(ctx, e.Token, e.ClientName)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}

func (r *KeyRegistry) Count(ctx context.Context) (int, error) {
	return r.store.Count(ctx)
}

type nopAuditLogger struct{}

func (nopAuditLogger) AuditLog(context.Context, domain.ClientIdentity, string, bool, error) {}
