package errors

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	ec := NewErrorClassifier(slog.New(slog.DiscardHandler))

	tests := []struct {
		name    string
		err     error
		class   ErrorClass
		status  int
		message string
	}{
		{"bad request", WithMessage(ErrBadRequest, "Query cannot be empty"), ClassValidation, http.StatusBadRequest, "Query cannot be empty"},
		{"unauthorized default message", ErrUnauthorized, ClassAuthentication, http.StatusUnauthorized, "Invalid or missing API key"},
		{"forbidden", fmt.Errorf("issue: %w", ErrForbidden), ClassAuthorization, http.StatusForbidden, "Invalid admin credential"},
		{"unavailable", WithMessage(ErrServiceUnavailable, "Service not properly configured"), ClassUnavailable, http.StatusServiceUnavailable, "Service not properly configured"},
		{"upstream keeps provider text", WithMessage(ErrUpstream, "Error processing brainstorm request: model overloaded"), ClassUpstream, http.StatusInternalServerError, "Error processing brainstorm request: model overloaded"},
		{"internal hides detail", fmt.Errorf("postgres: connection refused at 10.0.0.5"), ClassInternal, http.StatusInternalServerError, "An unexpected internal error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := ec.Classify(tt.err, "op")
			assert.Equal(t, tt.class, classified.Class)

			status, msg := ec.LogAndSanitize(context.Background(), classified)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestErrorClassString(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", ClassValidation.String())
	assert.Equal(t, "UPSTREAM_ERROR", ClassUpstream.String())
	assert.Equal(t, "INTERNAL", ClassInternal.String())
}

func TestPublicErrorUnwrap(t *testing.T) {
	err := WithMessage(ErrBadRequest, "label %q too long", "x")
	assert.ErrorIs(t, err, ErrBadRequest)
	assert.Equal(t, `bad request: label "x" too long`, err.Error())
}
