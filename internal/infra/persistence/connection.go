package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spounge-ai/brainstormity/internal/infra/config"
)

const pingTimeout = 5 * time.Second

// NewConnectionPool creates a database connection pool and checks that the server answers.
func NewConnectionPool(ctx context.Context, dbConfig config.DatabaseConfig, serverMode string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dbConfig.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse db config: %w", err)
	}

	if serverMode == "production" && poolConfig.ConnConfig.TLSConfig == nil {
		return nil, fmt.Errorf("database connection must use TLS in production mode (set sslmode in database.url)")
	}

	if dbConfig.MaxConns > 0 {
		poolConfig.MaxConns = dbConfig.MaxConns
	}
	if dbConfig.MinConns > 0 {
		poolConfig.MinConns = dbConfig.MinConns
	}
	if dbConfig.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = dbConfig.MaxConnLifetime
	}
	if dbConfig.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = dbConfig.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
