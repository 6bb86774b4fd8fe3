package persistence

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spounge-ai/brainstormity/internal/domain"
	"github.com/spounge-ai/brainstormity/internal/infra/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	*auth.InMemoryCredentialStore
	gets atomic.Int32
}

func (c *countingStore) Get(ctx context.Context, tokenHash string) (*domain.Credential, error) {
	c.gets.Add(1)
	return c.InMemoryCredentialStore.Get(ctx, tokenHash)
}

// pausingStore holds its first Get after the row has been read until release is closed.
type pausingStore struct {
	*auth.InMemoryCredentialStore
	once    sync.Once
	fetched chan struct{}
	release chan struct{}
}

func (p *pausingStore) Get(ctx context.Context, tokenHash string) (*domain.Credential, error) {
	cred, err := p.InMemoryCredentialStore.Get(ctx, tokenHash)
	p.once.Do(func() {
		close(p.fetched)
		<-p.release
	})
	return cred, err
}

func TestCachedCredentialStore_DeleteDuringInFlightGet(t *testing.T) {
	inner := &pausingStore{
		InMemoryCredentialStore: auth.NewInMemoryCredentialStore(),
		fetched:                 make(chan struct{}),
		release:                 make(chan struct{}),
	}
	store := NewCachedCredentialStore(inner, time.Minute, slog.New(slog.DiscardHandler))
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newCred("h1", "frontend")))

	done := make(chan error, 1)
	go func() {
		_, err := store.Get(ctx, "h1")
		done <- err
	}()

	<-inner.fetched
	require.NoError(t, store.Delete(ctx, "h1"))
	close(inner.release)
	require.NoError(t, <-done)

	_, err := store.Get(ctx, "h1")
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
}

func TestCachedCredentialStore_ReadThrough(t *testing.T) {
	inner := &countingStore{InMemoryCredentialStore: auth.NewInMemoryCredentialStore()}
	store := NewCachedCredentialStore(inner, time.Minute, slog.New(slog.DiscardHandler))
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newCred("h1", "frontend")))

	for i := 0; i < 3; i++ {
		got, err := store.Get(ctx, "h1")
		require.NoError(t, err)
		assert.Equal(t, domain.ClientIdentity("frontend"), got.ClientName)
	}
	assert.EqualValues(t, 1, inner.gets.Load())
}

func TestCachedCredentialStore_MissesAreNotCached(t *testing.T) {
	inner := &countingStore{InMemoryCredentialStore: auth.NewInMemoryCredentialStore()}
	store := NewCachedCredentialStore(inner, time.Minute, slog.New(slog.DiscardHandler))
	defer store.Close()
	ctx := context.Background()

	_, err := store.Get(ctx, "h1")
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)

	require.NoError(t, inner.Create(ctx, newCred("h1", "frontend")))

	_, err = store.Get(ctx, "h1")
	assert.NoError(t, err)
}

func TestCachedCredentialStore_DeleteEvicts(t *testing.T) {
	inner := &countingStore{InMemoryCredentialStore: auth.NewInMemoryCredentialStore()}
	store := NewCachedCredentialStore(inner, time.Minute, slog.New(slog.DiscardHandler))
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newCred("h1", "frontend")))
	_, err := store.Get(ctx, "h1")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "h1"))

	_, err = store.Get(ctx, "h1")
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
