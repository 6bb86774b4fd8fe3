package config

import "time"

// DatabaseConfig represents the Postgres connection pool configuration.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"          validate:"gte=0"`
	MinConns        int32         `mapstructure:"min_conns"          validate:"gte=0"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	RunMigrations   bool          `mapstructure:"run_migrations"`
}
