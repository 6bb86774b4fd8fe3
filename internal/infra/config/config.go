package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	customvalidator "github.com/spounge-ai/brainstormity/pkg/validator"
)

const (
	DefaultProviderBaseURL = "https://router.huggingface.co/v1"
	DefaultProviderModel   = "deepseek-ai/DeepSeek-R1-0528-Qwen3-8B:novita"
)

type Config struct {
	Server         ServerConfig   `mapstructure:"server"`
	Provider       ProviderConfig `mapstructure:"provider"`
	Gateway        GatewayConfig  `mapstructure:"gateway"`
	Admin          AdminConfig    `mapstructure:"admin"`
	Registry       RegistryConfig `mapstructure:"registry"`
	Database       DatabaseConfig `mapstructure:"database"`
	AWS            AWSConfig      `mapstructure:"aws"`
	Audit          AuditConfig    `mapstructure:"audit"`
	Log            LogConfig      `mapstructure:"log"`
	ServiceVersion string
	BuildCommit    string
}

// ProviderCredentialPresent reports whether a provider credential was supplied in any form.
func (c *Config) ProviderCredentialPresent() bool {
	return c.Provider.APIKey != "" || c.Provider.APIKeyParameter != ""
}

func Load(path string) (*Config, error) {
	vip := viper.New()
	if path != "" {
		vip.SetConfigFile(path)
	} else {
		vip.SetConfigName("config")
		vip.AddConfigPath("./configs")
		vip.AddConfigPath(".")
	}

	vip.SetConfigType("yaml")
	vip.AutomaticEnv()
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(vip)
	if err := bindLegacyEnv(vip); err != nil {
		return nil, err
	}

	if err := vip.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.ServiceVersion = getenv("BRAINSTORM_SERVICE_VERSION", "unknown")
	cfg.BuildCommit = getenv("BRAINSTORM_BUILD_COMMIT", "unknown")

	return &cfg, nil
}

// Validate runs the struct tags and the rules that span more than one section.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := customvalidator.RegisterCustomValidators(validate); err != nil {
		return fmt.Errorf("failed to register custom validators: %w", err)
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Admin.APIKey == "" && c.Admin.APIKeyHash == "" && c.Admin.APIKeyParameter == "" {
		return fmt.Errorf("config validation failed: admin credential is required (admin.api_key, admin.api_key_hash or admin.api_key_parameter)")
	}

	usesSSM := c.Admin.APIKeyParameter != "" || c.Provider.APIKeyParameter != ""
	if usesSSM && !c.AWS.Enabled {
		return fmt.Errorf("config validation failed: SSM parameters require aws.enabled")
	}

	switch c.Registry.Backend {
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("config validation failed: database.url is required for the postgres registry")
		}
	case "s3":
		if !c.AWS.Enabled || c.AWS.S3Bucket == "" {
			return fmt.Errorf("config validation failed: aws.enabled and aws.s3_bucket are required for the s3 registry")
		}
	}

	if c.Registry.CacheTTL != "" {
		if _, err := time.ParseDuration(c.Registry.CacheTTL); err != nil {
			return fmt.Errorf("config validation failed: registry.cache_ttl: %w", err)
		}
	}

	if c.Audit.Persist && c.Database.URL == "" {
		return fmt.Errorf("config validation failed: database.url is required when audit.persist is set")
	}

	if c.Server.WriteTimeout <= c.Provider.Timeout {
		return fmt.Errorf("config validation failed: server.write_timeout (%s) must exceed provider.timeout (%s)",
			c.Server.WriteTimeout, c.Provider.Timeout)
	}

	return nil
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", 8000)
	vip.SetDefault("server.mode", "development")
	vip.SetDefault("server.tls.enabled", false)
	vip.SetDefault("server.tls.cert_file", "")
	vip.SetDefault("server.tls.key_file", "")
	vip.SetDefault("server.tls.client_ca_file", "")
	vip.SetDefault("server.tls.client_auth", "")
	vip.SetDefault("server.read_timeout", "15s")
	vip.SetDefault("server.write_timeout", "75s")
	vip.SetDefault("server.idle_timeout", "120s")
	vip.SetDefault("server.shutdown_timeout", "10s")
	vip.SetDefault("server.max_body_bytes", 64*1024)

	vip.SetDefault("provider.api_key", "")
	vip.SetDefault("provider.api_key_parameter", "")
	vip.SetDefault("provider.base_url", DefaultProviderBaseURL)
	vip.SetDefault("provider.model", DefaultProviderModel)
	vip.SetDefault("provider.timeout", "60s")

	vip.SetDefault("gateway.max_query_length", 8000)

	vip.SetDefault("admin.api_key", "")
	vip.SetDefault("admin.api_key_hash", "")
	vip.SetDefault("admin.api_key_parameter", "")

	vip.SetDefault("registry.backend", "memory")
	vip.SetDefault("registry.seed_file", "")
	vip.SetDefault("registry.token_prefix", "bst_prod_")
	vip.SetDefault("registry.cache_ttl", "1m")

	vip.SetDefault("database.url", "")
	vip.SetDefault("database.max_conns", 10)
	vip.SetDefault("database.min_conns", 0)
	vip.SetDefault("database.max_conn_lifetime", "1h")
	vip.SetDefault("database.max_conn_idle_time", "30m")
	vip.SetDefault("database.run_migrations", true)

	vip.SetDefault("aws.enabled", false)
	vip.SetDefault("aws.region", "")
	vip.SetDefault("aws.s3_bucket", "")
	vip.SetDefault("aws.s3_prefix", "api-keys/")

	vip.SetDefault("audit.persist", false)
	vip.SetDefault("audit.channel_buffer_size", 1024)
	vip.SetDefault("audit.worker_count", 1)
	vip.SetDefault("audit.batch_size", 50)
	vip.SetDefault("audit.batch_timeout", "2s")

	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.format", "text")
}

// bindLegacyEnv keeps the variable names the first deployments were configured with.
func bindLegacyEnv(vip *viper.Viper) error {
	bindings := map[string][]string{
		"provider.api_key": {"PROVIDER_API_KEY", "HUGGINGFACE_API_KEY"},
		"server.port":      {"SERVER_PORT", "PORT"},
		"admin.api_key":    {"ADMIN_API_KEY"},
	}
	for key, envs := range bindings {
		if err := vip.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

// getenv returns an environment variable or a default value.
func getenv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
