package persistence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/spounge-ai/brainstormity/internal/domain"
	"github.com/spounge-ai/brainstormity/pkg/cache"
)

const cacheSweepInterval = 5 * time.Minute

// CachedCredentialStore is a read-through decorator for remote credential stores.
// Only hits are cached, so a newly issued key is visible everywhere at once, while a
// revocation made on another instance can take up to the TTL to be observed here.
type CachedCredentialStore struct {
	store  domain.CredentialStore
	cache  cache.Store[string, *domain.Credential]
	ttl    time.Duration
	logger *slog.Logger

	// mu orders cache fills against deletes. generation advances on every delete;
	// a fill whose read started in an older generation is dropped.
	mu         sync.Mutex
	generation uint64
}

var _ domain.CredentialStore = (*CachedCredentialStore)(nil)

func NewCachedCredentialStore(store domain.CredentialStore, ttl time.Duration, logger *slog.Logger) *CachedCredentialStore {
	return &CachedCredentialStore{
		store: store,
		cache: cache.New[string, *domain.Credential](
			cache.WithDefaultTTL[string, *domain.Credential](ttl),
			cache.WithSweepInterval[string, *domain.Credential](cacheSweepInterval),
		),
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedCredentialStore) Get(ctx context.Context, tokenHash string) (*domain.Credential, error) {
	if cred, found := c.cache.Get(ctx, tokenHash); found {
		return cred, nil
	}

	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	cred, err := c.store.Get(ctx, tokenHash)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.generation == gen {
		c.cache.Set(ctx, tokenHash, cred, c.ttl)
	} else {
		c.logger.Debug("skipping cache fill after concurrent delete")
	}
	c.mu.Unlock()

	return cred, nil
}

func (c *CachedCredentialStore) Create(ctx context.Context, cred *domain.Credential) error {
	return c.store.Create(ctx, cred)
}

func (c *CachedCredentialStore) Delete(ctx context.Context, tokenHash string) error {
	c.evict(ctx, tokenHash)
	if err := c.store.Delete(ctx, tokenHash); err != nil {
		return err
	}
	// Reads that started before the row was gone must not repopulate the entry.
	c.evict(ctx, tokenHash)
	return nil
}

func (c *CachedCredentialStore) evict(ctx context.Context, tokenHash string) {
	c.mu.Lock()
	c.generation++
	c.cache.Delete(ctx, tokenHash)
	c.mu.Unlock()
}

func (c *CachedCredentialStore) Count(ctx context.Context) (int, error) {
	return c.store.Count(ctx)
}

// Close stops the cache sweeper.
func (c *CachedCredentialStore) Close() {
	c.cache.Close()
	c.logger.Debug("credential cache closed")
}
