package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrCredentialExists   = errors.New("credential already exists")
)

// ClientIdentity is the label a bearer token is attributed to.
type ClientIdentity string

func (c ClientIdentity) String() string { return string(c) }

// Credential is a registered API key. Only the SHA-256 digest of the token is kept;
// the raw token leaves the service once, when it is issued.
type Credential struct {
	ID         uuid.UUID
	TokenHash  string
	ClientName ClientIdentity
	CreatedAt  time.Time
}

// CredentialStore defines the persistence contract for API keys.
// Implementations must be safe for concurrent use.
type CredentialStore interface {
	// Get returns ErrCredentialNotFound when no credential has the digest.
	Get(ctx context.Context, tokenHash string) (*Credential, error)
	// Create returns ErrCredentialExists when the digest is already registered.
	Create(ctx context.Context, cred *Credential) error
	// Delete is idempotent.
	Delete(ctx context.Context, tokenHash string) error
	Count(ctx context.Context) (int, error)
}
