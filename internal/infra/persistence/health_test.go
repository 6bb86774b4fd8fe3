package persistence

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePool struct {
	mu      sync.Mutex
	pingErr error
	closed  bool
}

func (p *fakePool) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pingErr
}

func (p *fakePool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *fakePool) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pingErr = err
}

func TestConnectionMonitor_TracksHealth(t *testing.T) {
	pool := &fakePool{}
	cm := NewConnectionMonitor(pool, slog.New(slog.DiscardHandler), 5*time.Millisecond)
	require.NoError(t, cm.Start(context.Background()))

	assert.True(t, cm.Health(context.Background()).Ready)

	pool.setErr(errors.New("connection refused"))
	assert.Eventually(t, func() bool { return !cm.IsHealthy() }, time.Second, 5*time.Millisecond)

	status := cm.Health(context.Background())
	assert.False(t, status.Ready)
	assert.Contains(t, status.Message, "connection refused")

	pool.setErr(nil)
	assert.Eventually(t, cm.IsHealthy, time.Second, 5*time.Millisecond)

	require.NoError(t, cm.Stop(context.Background()))
	assert.True(t, pool.closed)
}
