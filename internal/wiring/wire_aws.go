package wiring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	infra_config "github.com/spounge-ai/brainstormity/internal/infra/config"
	"github.com/spounge-ai/brainstormity/internal/infra/persistence"
	"github.com/spounge-ai/brainstormity/internal/infra/secrets"
)

// provideAWSConfig returns nil when AWS integration is disabled.
func provideAWSConfig(ctx context.Context, cfg *infra_config.Config) (*aws.Config, error) {
	if !cfg.AWS.Enabled {
		return nil, nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWS.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWS.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return &awsCfg, nil
}

func provideSecretProvider(awsCfg *aws.Config) secrets.Provider {
	if awsCfg == nil {
		return nil
	}
	return secrets.NewParameterStore(*awsCfg)
}

func provideS3CredentialStore(awsCfg *aws.Config, cfg *infra_config.Config, logger *slog.Logger) (*persistence.S3CredentialStore, error) {
	if awsCfg == nil {
		return nil, fmt.Errorf("s3 registry requires aws.enabled")
	}
	return persistence.NewS3CredentialStore(s3.NewFromConfig(*awsCfg), cfg.AWS.S3Bucket, cfg.AWS.S3Prefix, logger), nil
}
