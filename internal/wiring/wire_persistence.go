package wiring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spounge-ai/brainstormity/internal/domain"
	infra_auth "github.com/spounge-ai/brainstormity/internal/infra/auth"
	infra_config "github.com/spounge-ai/brainstormity/internal/infra/config"
	"github.com/spounge-ai/brainstormity/internal/infra/persistence"
)

func needsDatabase(cfg *infra_config.Config) bool {
	return cfg.Registry.Backend == "postgres" || cfg.Audit.Persist
}

// providePgxPool connects and, unless disabled, brings the schema up to date.
func providePgxPool(ctx context.Context, cfg *infra_config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	pool, err := persistence.NewConnectionPool(ctx, cfg.Database, cfg.Server.Mode)
	if err != nil {
		return nil, err
	}

	if cfg.Database.RunMigrations {
		if err := persistence.RunMigrations(cfg.Database.URL); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("database migrations applied")
	}
	return pool, nil
}

// provideCredentialStore picks the backend and puts the TTL cache in front of remote ones.
// The returned cleanup must run after the HTTP server has stopped.
func provideCredentialStore(
	cfg *infra_config.Config,
	pool *pgxpool.Pool,
	awsCfg *aws.Config,
	logger *slog.Logger,
) (domain.CredentialStore, func(), error) {
	var store domain.CredentialStore

	switch cfg.Registry.Backend {
	case "memory":
		return infra_auth.NewInMemoryCredentialStore(), func() {}, nil
	case "postgres":
		store = persistence.NewPostgresCredentialStore(pool)
	case "s3":
		s3Store, err := provideS3CredentialStore(awsCfg, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		store = s3Store
	default:
		return nil, nil, fmt.Errorf("invalid registry backend: %s", cfg.Registry.Backend)
	}

	ttl, err := cacheTTL(cfg.Registry.CacheTTL)
	if err != nil {
		return nil, nil, err
	}
	if ttl <= 0 {
		return store, func() {}, nil
	}

	cached := persistence.NewCachedCredentialStore(store, ttl, logger)
	return cached, cached.Close, nil
}

func cacheTTL(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse cache TTL: %w", err)
	}
	return ttl, nil
}
