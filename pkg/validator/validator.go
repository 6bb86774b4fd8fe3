package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var clientLabelRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ._@-]{0,127}$`)

// isClientLabel checks that a client label is short, printable and starts with an alphanumeric.
func isClientLabel(fl validator.FieldLevel) bool {
	return clientLabelRegex.MatchString(fl.Field().String())
}

// RegisterCustomValidators registers custom validation functions with the validator.
func RegisterCustomValidators(validate *validator.Validate) error {
	if err := validate.RegisterValidation("clientlabel", isClientLabel); err != nil {
		return fmt.Errorf("failed to register clientlabel validator: %w", err)
	}
	return nil
}
