package auth

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken("bst_prod_")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(token, "bst_prod_"))

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(token, "bst_prod_"))
	require.NoError(t, err)
	assert.Len(t, raw, TokenEntropyBytes)
	assert.NotContains(t, token, "=")
}

func TestGenerateToken_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		token, err := GenerateToken("")
		require.NoError(t, err)
		_, dup := seen[token]
		require.False(t, dup, "duplicate token after %d draws", i)
		seen[token] = struct{}{}
	}
}

func TestHashToken(t *testing.T) {
	h := HashToken("tok-A")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashToken("tok-A"))
	assert.NotEqual(t, h, HashToken("tok-B"))
	assert.NotContains(t, h, "tok-A")
}
