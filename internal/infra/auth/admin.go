package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	app_errors "github.com/spounge-ai/brainstormity/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

var ErrAdminCredentialMissing = errors.New("admin credential is not configured")

// AdminAuthenticator checks the administrative credential that guards key issuance and revocation.
// It accepts either the plain key or a bcrypt hash of it; when both are set the hash wins.
type AdminAuthenticator struct {
	plain []byte
	hash  []byte
}

// NewAdminAuthenticator refuses to build an authenticator without a credential.
func NewAdminAuthenticator(apiKey, apiKeyHash string) (*AdminAuthenticator, error) {
	if apiKeyHash != "" {
		if !isBcryptHash(apiKeyHash) {
			return nil, fmt.Errorf("admin api_key_hash must be a valid bcrypt hash")
		}
		return &AdminAuthenticator{hash: []byte(apiKeyHash)}, nil
	}
	if apiKey == "" {
		return nil, ErrAdminCredentialMissing
	}
	return &AdminAuthenticator{plain: []byte(apiKey)}, nil
}

// Verify returns an ErrForbidden-classified error unless presented matches.
func (a *AdminAuthenticator) Verify(presented string) error {
	if presented == "" {
		return app_errors.WithMessage(app_errors.ErrForbidden, "Invalid admin key")
	}

	if a.hash != nil {
		if err := bcrypt.CompareHashAndPassword(a.hash, []byte(presented)); err != nil {
			return app_errors.WithMessage(app_errors.ErrForbidden, "Invalid admin key")
		}
		return nil
	}

	if subtle.ConstantTimeCompare(a.plain, []byte(presented)) != 1 {
		return app_errors.WithMessage(app_errors.ErrForbidden, "Invalid admin key")
	}
	return nil
}

// isBcryptHash checks the $2a$/$2b$/$2y$ prefix and the fixed 60-byte length.
func isBcryptHash(h string) bool {
	if len(h) != 60 {
		return false
	}
	switch h[:4] {
	case "$2a$", "$2b$", "$2y$":
		return true
	}
	return false
}
