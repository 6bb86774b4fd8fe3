package errors

import (
	"errors"
	"fmt"
)

var (
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrUpstream           = errors.New("upstream provider error")
)

// PublicError pairs one of the sentinel kinds with a message that is safe to return to the caller.
type PublicError struct {
	Kind    error
	Message string
}

func (e *PublicError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PublicError) Unwrap() error {
	return e.Kind
}

// WithMessage builds a PublicError of the given kind.
func WithMessage(kind error, format string, args ...any) error {
	return &PublicError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
