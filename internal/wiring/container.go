package wiring

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spounge-ai/brainstormity/internal/adapters/llm"
	"github.com/spounge-ai/brainstormity/internal/adapters/llm/providers/huggingface"
	apphttp "github.com/spounge-ai/brainstormity/internal/app/http"
	app_errors "github.com/spounge-ai/brainstormity/internal/errors"
	"github.com/spounge-ai/brainstormity/internal/infra/audit"
	infra_auth "github.com/spounge-ai/brainstormity/internal/infra/auth"
	infra_config "github.com/spounge-ai/brainstormity/internal/infra/config"
	"github.com/spounge-ai/brainstormity/internal/infra/persistence"
	"github.com/spounge-ai/brainstormity/internal/infra/secrets"
	"github.com/spounge-ai/brainstormity/internal/service"
	"github.com/spounge-ai/brainstormity/internal/validation"
	"github.com/spounge-ai/brainstormity/pkg/patterns/lifecycle"
)

// Container holds everything main needs to run the service.
type Container struct {
	Registry *service.KeyRegistry
	Gateway  *service.Gateway
	Handler  http.Handler

	// Background resources in start order; main stops them in reverse.
	Resources []lifecycle.ManagedResource

	cleanups []func()
}

// Close releases what is not a ManagedResource. Call it after the resources have stopped.
func (c *Container) Close() {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		c.cleanups[i]()
	}
}

// Build constructs the dependency graph described by cfg. On error everything already
// created is released.
func Build(ctx context.Context, cfg *infra_config.Config, logger *slog.Logger) (_ *Container, err error) {
	c := &Container{}
	defer func() {
		if err != nil {
			for i := len(c.Resources) - 1; i >= 0; i-- {
				_ = c.Resources[i].Stop(ctx)
			}
			c.Close()
		}
	}()

	awsCfg, err := provideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	secretProvider := provideSecretProvider(awsCfg)

	admin, err := provideAdminAuthenticator(ctx, cfg, secretProvider)
	if err != nil {
		return nil, err
	}

	var pool *pgxpool.Pool
	if needsDatabase(cfg) {
		pool, err = providePgxPool(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		c.Resources = append(c.Resources, persistence.NewConnectionMonitor(pool, logger, persistence.DefaultHealthCheckInterval))
	}

	credStore, cleanup, err := provideCredentialStore(cfg, pool, awsCfg, logger)
	if err != nil {
		return nil, err
	}
	c.cleanups = append(c.cleanups, cleanup)

	var sink audit.EventSink
	if cfg.Audit.Persist {
		writer := audit.NewAsyncWriter(logger, persistence.NewAuditRepository(pool), audit.AsyncWriterConfig{
			ChannelBufferSize: cfg.Audit.ChannelBufferSize,
			WorkerCount:       cfg.Audit.WorkerCount,
			BatchSize:         cfg.Audit.BatchSize,
			BatchTimeout:      cfg.Audit.BatchTimeout,
		})
		c.Resources = append(c.Resources, writer)
		sink = writer
	}
	auditLogger := audit.NewAuditLogger(logger, sink)

	validator, err := validation.NewRequestValidator(cfg.Gateway.MaxQueryLength)
	if err != nil {
		return nil, err
	}

	c.Registry = service.NewKeyRegistry(credStore, admin, validator, logger,
		service.WithTokenPrefix(cfg.Registry.TokenPrefix),
		service.WithAuditLogger(auditLogger),
	)

	if err := seedRegistry(ctx, c.Registry, cfg.Registry.SeedFile, logger); err != nil {
		return nil, err
	}

	provider := provideProvider(ctx, cfg, secretProvider, logger)

	c.Gateway = service.NewGateway(c.Registry, provider, validator, auditLogger, logger, service.GatewayConfig{
		ProviderTimeout:   cfg.Provider.Timeout,
		CredentialPresent: cfg.ProviderCredentialPresent(),
	})

	handlers := apphttp.NewHandlers(c.Gateway, c.Registry, app_errors.NewErrorClassifier(logger), logger, cfg.Server.MaxBodyBytes)
	c.Handler = apphttp.NewRouter(handlers, logger)

	return c, nil
}

func provideAdminAuthenticator(ctx context.Context, cfg *infra_config.Config, provider secrets.Provider) (*infra_auth.AdminAuthenticator, error) {
	key, err := secrets.Resolve(ctx, provider, cfg.Admin.APIKey, cfg.Admin.APIKeyParameter)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve admin credential: %w", err)
	}
	admin, err := infra_auth.NewAdminAuthenticator(key, cfg.Admin.APIKeyHash)
	if err != nil {
		return nil, fmt.Errorf("failed to configure admin credential: %w", err)
	}
	return admin, nil
}

// provideProvider returns nil, meaning no provider session, when no credential can be obtained.
// The service still starts so / and /health keep answering.
func provideProvider(ctx context.Context, cfg *infra_config.Config, provider secrets.Provider, logger *slog.Logger) llm.Provider {
	apiKey, err := secrets.Resolve(ctx, provider, cfg.Provider.APIKey, cfg.Provider.APIKeyParameter)
	if err != nil {
		logger.Error("failed to resolve provider credential, brainstorm endpoints disabled", "error", err)
		return nil
	}
	if apiKey == "" {
		logger.Warn("no provider credential configured, brainstorm endpoints disabled")
		return nil
	}

	hf, err := huggingface.NewProvider(huggingface.Config{
		APIKey:  apiKey,
		BaseURL: cfg.Provider.BaseURL,
		Model:   cfg.Provider.Model,
	})
	if err != nil {
		logger.Error("failed to create provider client, brainstorm endpoints disabled", "error", err)
		return nil
	}

	logger.Info("provider client initialized", "provider", hf.Name(), "model", hf.Model())
	return hf
}

func seedRegistry(ctx context.Context, registry *service.KeyRegistry, path string, logger *slog.Logger) error {
	if path == "" {
		return nil
	}

	entries, err := infra_auth.LoadSeedFile(path)
	if err != nil {
		return err
	}

	added, err := registry.SeedAll(ctx, entries)
	if err != nil {
		return fmt.Errorf("failed to seed api keys: %w", err)
	}

	logger.Info("api keys seeded", "file", path, "entries", len(entries), "added", added)
	return nil
}
