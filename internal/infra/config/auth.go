package config

// AdminConfig holds the administrative credential guarding key issuance.
// Exactly one source is needed: a plain key, a bcrypt hash of it, or an SSM parameter name.
type AdminConfig struct {
	APIKey          string `mapstructure:"api_key"`
	APIKeyHash      string `mapstructure:"api_key_hash"`
	APIKeyParameter string `mapstructure:"api_key_parameter"`
}

// GatewayConfig bounds what reaches the provider.
type GatewayConfig struct {
	MaxQueryLength int `mapstructure:"max_query_length" validate:"gt=0,lte=100000"`
}

// RegistryConfig selects where API keys live.
type RegistryConfig struct {
	Backend     string `mapstructure:"backend"      validate:"required,oneof=memory postgres s3"`
	SeedFile    string `mapstructure:"seed_file"`
	TokenPrefix string `mapstructure:"token_prefix" validate:"max=32,printascii"`
	CacheTTL    string `mapstructure:"cache_ttl"`
}
