package errors

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

type ErrorClass int

const (
	ClassInternal ErrorClass = iota
	ClassValidation
	ClassAuthentication
	ClassAuthorization
	ClassUnavailable
	ClassUpstream
)

func (c ErrorClass) String() string {
	switch c {
	case ClassValidation:
		return "BAD_REQUEST"
	case ClassAuthentication:
		return "UNAUTHORIZED"
	case ClassAuthorization:
		return "FORBIDDEN"
	case ClassUnavailable:
		return "SERVICE_UNAVAILABLE"
	case ClassUpstream:
		return "UPSTREAM_ERROR"
	default:
		return "INTERNAL"
	}
}

// StatusCode maps the class onto the HTTP status returned to clients.
func (c ErrorClass) StatusCode() int {
	switch c {
	case ClassValidation:
		return http.StatusBadRequest
	case ClassAuthentication:
		return http.StatusUnauthorized
	case ClassAuthorization:
		return http.StatusForbidden
	case ClassUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type ClassifiedError struct {
	Class         ErrorClass
	InternalError error
	ClientMessage string
	OperationName string
}

type ErrorClassifier struct {
	logger *slog.Logger
}

func NewErrorClassifier(logger *slog.Logger) *ErrorClassifier {
	return &ErrorClassifier{logger: logger}
}

func (ec *ErrorClassifier) Classify(err error, operation string) *ClassifiedError {
	classified := &ClassifiedError{
		InternalError: err,
		OperationName: operation,
	}

	switch {
	case errors.Is(err, ErrBadRequest):
		classified.Class = ClassValidation
		classified.ClientMessage = "The request contains invalid parameters"
	case errors.Is(err, ErrUnauthorized):
		classified.Class = ClassAuthentication
		classified.ClientMessage = "Invalid or missing API key"
	case errors.Is(err, ErrForbidden):
		classified.Class = ClassAuthorization
		classified.ClientMessage = "Invalid admin credential"
	case errors.Is(err, ErrServiceUnavailable):
		classified.Class = ClassUnavailable
		classified.ClientMessage = "Service not properly configured"
	case errors.Is(err, ErrUpstream):
		classified.Class = ClassUpstream
		classified.ClientMessage = "The text generation provider failed"
	default:
		classified.Class = ClassInternal
		classified.ClientMessage = "An unexpected internal error occurred"
	}

	// Internal errors never surface their text, whatever they wrap.
	var public *PublicError
	if classified.Class != ClassInternal && errors.As(err, &public) && public.Message != "" {
		classified.ClientMessage = public.Message
	}

	return classified
}

// LogAndSanitize records the internal detail and returns only what the client may see.
func (ec *ErrorClassifier) LogAndSanitize(ctx context.Context, classified *ClassifiedError) (int, string) {
	level := slog.LevelWarn
	if classified.Class == ClassInternal || classified.Class == ClassUpstream {
		level = slog.LevelError
	}

	ec.logger.Log(ctx, level, "operation failed",
		"operation", classified.OperationName,
		"error_class", classified.Class.String(),
		"internal_error", classified.InternalError.Error(),
	)

	return classified.Class.StatusCode(), classified.ClientMessage
}
