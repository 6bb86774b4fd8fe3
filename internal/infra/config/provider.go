package config

import "time"

// ProviderConfig configures the hosted text-generation endpoint.
type ProviderConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	APIKeyParameter string        `mapstructure:"api_key_parameter"`
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	Model           string        `mapstructure:"model"    validate:"required"`
	Timeout         time.Duration `mapstructure:"timeout"  validate:"gt=0"`
}
