package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

var ErrSecretNotFound = errors.New("secret not found")

// Provider retrieves bootstrap secrets such as the provider and admin credentials.
type Provider interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// SSMAPI is the part of *ssm.Client the parameter store calls.
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type ParameterStore struct {
	client SSMAPI
}

func NewParameterStore(cfg aws.Config) *ParameterStore {
	return &ParameterStore{client: ssm.NewFromConfig(cfg)}
}

func NewParameterStoreWithClient(client SSMAPI) *ParameterStore {
	return &ParameterStore{client: client}
}

// GetSecret reads a SecureString (or plain String) parameter.
func (ps *ParameterStore) GetSecret(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("secret name cannot be empty")
	}

	result, err := ps.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
		}
		return "", fmt.Errorf("failed to get parameter %s: %w", name, err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil {
		return "", fmt.Errorf("%w: %s has no value", ErrSecretNotFound, name)
	}
	return *result.Parameter.Value, nil
}

// Resolve returns value when set and otherwise looks parameter up. Both empty yields "".
func Resolve(ctx context.Context, provider Provider, value, parameter string) (string, error) {
	if value != "" || parameter == "" {
		return value, nil
	}
	if provider == nil {
		return "", fmt.Errorf("parameter %s configured but no secret provider is available", parameter)
	}
	return provider.GetSecret(ctx, parameter)
}
