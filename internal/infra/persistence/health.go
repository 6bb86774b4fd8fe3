package persistence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/spounge-ai/brainstormity/pkg/patterns/lifecycle"
)

const DefaultHealthCheckInterval = 30 * time.Second

// Pool is the part of *pgxpool.Pool the monitor needs.
type Pool interface {
	Ping(ctx context.Context) error
	Close()
}

// ConnectionMonitor pings the database in the background and owns the pool's shutdown.
type ConnectionMonitor struct {
	pool     Pool
	logger   *slog.Logger
	interval time.Duration

	mu        sync.RWMutex
	isHealthy bool
	lastErr   error

	cancel context.CancelFunc
	done   chan struct{}
}

var _ lifecycle.ManagedResource = (*ConnectionMonitor)(nil)

func NewConnectionMonitor(pool Pool, logger *slog.Logger, interval time.Duration) *ConnectionMonitor {
	if interval <= 0 {
		interval = DefaultHealthCheckInterval
	}
	return &ConnectionMonitor{
		pool:      pool,
		logger:    logger,
		interval:  interval,
		isHealthy: true, // NewConnectionPool already pinged
	}
}

// Start launches the check loop and returns.
func (cm *ConnectionMonitor) Start(ctx context.Context) error {
	ctx, cm.cancel = context.WithCancel(context.Background())
	cm.done = make(chan struct{})

	go func() {
		defer close(cm.done)
		ticker := time.NewTicker(cm.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cm.performHealthCheck(ctx)
			}
		}
	}()
	return nil
}

// Stop ends the check loop and closes the pool.
func (cm *ConnectionMonitor) Stop(ctx context.Context) error {
	if cm.cancel != nil {
		cm.cancel()
		select {
		case <-cm.done:
		case <-ctx.Done():
		}
	}
	cm.pool.Close()
	return nil
}

func (cm *ConnectionMonitor) Health(ctx context.Context) lifecycle.HealthStatus {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if !cm.isHealthy {
		msg := "database unreachable"
		if cm.lastErr != nil {
			msg = msg + ": " + cm.lastErr.Error()
		}
		return lifecycle.HealthStatus{Ready: false, Message: msg}
	}
	return lifecycle.HealthStatus{Ready: true}
}

func (cm *ConnectionMonitor) performHealthCheck(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := cm.pool.Ping(checkCtx)

	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.lastErr = err
	if err != nil {
		if cm.isHealthy {
			cm.isHealthy = false
			cm.logger.Error("database connection unhealthy", "error", err)
		}
		return
	}
	if !cm.isHealthy {
		cm.isHealthy = true
		cm.logger.Info("database connection recovered")
	}
}

func (cm *ConnectionMonitor) IsHealthy() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.isHealthy
}
