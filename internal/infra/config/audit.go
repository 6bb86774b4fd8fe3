package config

import "time"

// AuditConfig holds the configuration for audit persistence.
type AuditConfig struct {
	Persist           bool          `mapstructure:"persist"`
	ChannelBufferSize int           `mapstructure:"channel_buffer_size" validate:"gt=0"`
	WorkerCount       int           `mapstructure:"worker_count"        validate:"gt=0"`
	BatchSize         int           `mapstructure:"batch_size"          validate:"gt=0"`
	BatchTimeout      time.Duration `mapstructure:"batch_timeout"       validate:"gt=0"`
}
