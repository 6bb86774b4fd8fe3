package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	app_errors "github.com/spounge-ai/brainstormity/internal/errors"
	pkgvalidator "github.com/spounge-ai/brainstormity/pkg/validator"
)

const (
	DefaultMaxQueryLength = 8000
	MaxClientLabelLen     = 128
	MaxRequestBodyBytes   = 64 * 1024
)

// RequestValidator checks the user-controlled inputs of the gateway and the admin routes.
// Failures are returned as BadRequest errors whose message can be shown to the caller.
type RequestValidator struct {
	validator      *validator.Validate
	maxQueryLength int
}

func NewRequestValidator(maxQueryLength int) (*RequestValidator, error) {
	v := validator.New()

	if err := pkgvalidator.RegisterCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register custom validators: %w", err)
	}

	if maxQueryLength <= 0 {
		maxQueryLength = DefaultMaxQueryLength
	}

	return &RequestValidator{
		validator:      v,
		maxQueryLength: maxQueryLength,
	}, nil
}

func (rv *RequestValidator) MaxQueryLength() int {
	return rv.maxQueryLength
}

// ValidateQuery rejects queries that are blank after trimming or longer than the
// configured limit. Length is counted in runes.
func (rv *RequestValidator) ValidateQuery(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return app_errors.WithMessage(app_errors.ErrBadRequest, "Query must not be empty")
	}

	if err := rv.validator.Var(query, fmt.Sprintf("max=%d", rv.maxQueryLength)); err != nil {
		return app_errors.WithMessage(app_errors.ErrBadRequest,
			"Query exceeds maximum length of %d characters", rv.maxQueryLength)
	}

	return nil
}

func (rv *RequestValidator) ValidateClientLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return app_errors.WithMessage(app_errors.ErrBadRequest, "client_name is required")
	}

	if err := rv.validator.Var(label, "clientlabel"); err != nil {
		return app_errors.WithMessage(app_errors.ErrBadRequest,
			"client_name must be 1-%d printable characters (letters, digits, space, '.', '_', '@', '-') starting with a letter or digit",
			MaxClientLabelLen)
	}

	return nil
}
