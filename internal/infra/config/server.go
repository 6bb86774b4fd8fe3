package config

import "time"

// ServerConfig represents the HTTP listener configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gte=1,lte=65535"`
	Mode            string        `mapstructure:"mode"             validate:"required,oneof=development production"`
	TLS             TLS           `mapstructure:"tls"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"gt=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"     validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"   validate:"gt=0"`
}

// TLS represents the TLS configuration.
type TLS struct {
	Enabled      bool   `mapstructure:"enabled"`
	CertFile     string `mapstructure:"cert_file"      validate:"required_if=Enabled true"`
	KeyFile      string `mapstructure:"key_file"       validate:"required_if=Enabled true"`
	ClientCAFile string `mapstructure:"client_ca_file"`
	ClientAuth   string `mapstructure:"client_auth"`
}

// LogConfig selects the slog handler and level.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}
