package auth

import (
	"context"
	"sync"

	"github.com/spounge-ai/brainstormity/internal/domain"
)

// InMemoryCredentialStore keeps credentials for the life of the process.
// Lookups share a read lock; issuance and revocation take the write lock.
type InMemoryCredentialStore struct {
	mu          sync.RWMutex
	credentials map[string]domain.Credential
}

// NewInMemoryCredentialStore creates an empty store.
func NewInMemoryCredentialStore() *InMemoryCredentialStore {
	return &InMemoryCredentialStore{credentials: make(map[string]domain.Credential)}
}

func (s *InMemoryCredentialStore) Get(ctx context.Context, tokenHash string) (*domain.Credential, error) {
	s.mu.RLock()
	cred, ok := s.credentials[tokenHash]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	return &cred, nil
}

func (s *InMemoryCredentialStore) Create(ctx context.Context, cred *domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.credentials[cred.TokenHash]; exists {
		return domain.ErrCredentialExists
	}
	s.credentials[cred.TokenHash] = *cred
	return nil
}

func (s *InMemoryCredentialStore) Delete(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	delete(s.credentials, tokenHash)
	s.mu.Unlock()
	return nil
}

func (s *InMemoryCredentialStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.credentials), nil
}
