package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSSM struct {
	params    map[string]string
	decrypted bool
}

func (f *fakeSSM) GetParameter(ctx context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.decrypted = aws.ToBool(in.WithDecryption)
	v, ok := f.params[aws.ToString(in.Name)]
	if !ok {
		return nil, &types.ParameterNotFound{Message: aws.String("not found")}
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String(v)}}, nil
}

func TestParameterStore_GetSecret(t *testing.T) {
	fake := &fakeSSM{params: map[string]string{"/brainstormity/hf": "hf_123"}}
	ps := NewParameterStoreWithClient(fake)

	v, err := ps.GetSecret(context.Background(), "/brainstormity/hf")
	require.NoError(t, err)
	assert.Equal(t, "hf_123", v)
	assert.True(t, fake.decrypted)

	_, err = ps.GetSecret(context.Background(), "/missing")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	_, err = ps.GetSecret(context.Background(), "")
	assert.Error(t, err)
}

type stubProvider struct{ calls int }

func (s *stubProvider) GetSecret(ctx context.Context, name string) (string, error) {
	s.calls++
	if name == "/bad" {
		return "", errors.New("access denied")
	}
	return "from-ssm", nil
}

func TestResolve(t *testing.T) {
	p := &stubProvider{}
	ctx := context.Background()

	v, err := Resolve(ctx, p, "inline", "/param")
	require.NoError(t, err)
	assert.Equal(t, "inline", v)
	assert.Zero(t, p.calls)

	v, err = Resolve(ctx, p, "", "/param")
	require.NoError(t, err)
	assert.Equal(t, "from-ssm", v)

	v, err = Resolve(ctx, p, "", "")
	require.NoError(t, err)
	assert.Empty(t, v)

	_, err = Resolve(ctx, p, "", "/bad")
	assert.Error(t, err)

	_, err = Resolve(ctx, nil, "", "/param")
	assert.Error(t, err)
}
