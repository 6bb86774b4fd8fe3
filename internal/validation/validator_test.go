package validation

import (
	"strings"
	"testing"

	app_errors "github.com/spounge-ai/brainstormity/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateQuery(t *testing.T) {
	rv, err := NewRequestValidator(10)
	require.NoError(t, err)

	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{"plain", "hello", false},
		{"exactly at limit", strings.Repeat("a", 10), false},
		{"multibyte counted as runes", strings.Repeat("é", 10), false},
		{"empty", "", true},
		{"whitespace only", " \t\n ", true},
		{"over limit", strings.Repeat("a", 11), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rv.ValidateQuery(tt.query)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, app_errors.ErrBadRequest)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewRequestValidator_DefaultsLimit(t *testing.T) {
	rv, err := NewRequestValidator(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxQueryLength, rv.MaxQueryLength())
}

func TestValidateClientLabel(t *testing.T) {
	rv, err := NewRequestValidator(0)
	require.NoError(t, err)

	assert.NoError(t, rv.ValidateClientLabel("frontend"))
	assert.NoError(t, rv.ValidateClientLabel("team-a.mobile_app@v2"))

	for _, bad := range []string{"", "   ", "-leading", "tab\tinside", strings.Repeat("x", MaxClientLabelLen+1)} {
		err := rv.ValidateClientLabel(bad)
		assert.ErrorIs(t, err, app_errors.ErrBadRequest, "label %q", bad)
	}
}
