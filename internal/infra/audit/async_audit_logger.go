package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spounge-ai/brainstormity/internal/domain"
	"github.com/spounge-ai/brainstormity/pkg/patterns/lifecycle"
)

// AsyncWriterConfig holds the configuration for the asynchronous writer.
type AsyncWriterConfig struct {
	ChannelBufferSize int
	WorkerCount       int
	BatchSize         int
	BatchTimeout      time.Duration
}

// AsyncWriter persists audit events in batches off the request path.
type AsyncWriter struct {
	logger       *slog.Logger
	auditRepo    domain.AuditRepository
	eventChannel chan *domain.AuditEvent
	waitGroup    sync.WaitGroup
	config       AsyncWriterConfig

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

var _ EventSink = (*AsyncWriter)(nil)
var _ lifecycle.ManagedResource = (*AsyncWriter)(nil)

func NewAsyncWriter(logger *slog.Logger, auditRepo domain.AuditRepository, config AsyncWriterConfig) *AsyncWriter {
	if config.ChannelBufferSize <= 0 {
		config.ChannelBufferSize = 1024
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.BatchTimeout <= 0 {
		config.BatchTimeout = 2 * time.Second
	}

	return &AsyncWriter{
		logger:       logger,
		auditRepo:    auditRepo,
		eventChannel: make(chan *domain.AuditEvent, config.ChannelBufferSize),
		config:       config,
	}
}

// Start launches the workers and returns immediately.
func (w *AsyncWriter) Start(ctx context.Context) error {
	w.waitGroup.Add(w.config.WorkerCount)
	for i := 0; i < w.config.WorkerCount; i++ {
		go w.worker()
	}
	return nil
}

// Stop closes the queue and waits for the workers to flush what is left.
func (w *AsyncWriter) Stop(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.eventChannel)
	w.mu.Unlock()

	w.logger.Info("shutting down audit writer")

	done := make(chan struct{})
	go func() {
		w.waitGroup.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("audit writer shut down successfully")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit writer did not drain: %w", ctx.Err())
	}
}

func (w *AsyncWriter) Health(ctx context.Context) lifecycle.HealthStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return lifecycle.HealthStatus{Ready: false, Message: "stopped"}
	}
	return lifecycle.HealthStatus{Ready: true}
}

// Enqueue hands an event to the workers. Events are dropped when the queue is full or closed.
func (w *AsyncWriter) Enqueue(event *domain.AuditEvent) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		w.dropped.Add(1)
		return
	}

	select {
	case w.eventChannel <- event:
	default:
		w.dropped.Add(1)
		w.logger.Warn("audit event channel is full, event dropped", "operation", event.Operation, "audit_id", event.ID)
	}
}

// Dropped reports how many events never reached the repository queue.
func (w *AsyncWriter) Dropped() int64 {
	return w.dropped.Load()
}

func (w *AsyncWriter) worker() {
	defer w.waitGroup.Done()

	ticker := time.NewTicker(w.config.BatchTimeout)
	defer ticker.Stop()

	batch := make([]*domain.AuditEvent, 0, w.config.BatchSize)

	for {
		select {
		case event, ok := <-w.eventChannel:
			if !ok {
				w.writeBatch(batch)
				return
			}
			batch = append(batch, event)
			if len(batch) >= w.config.BatchSize {
				w.writeBatch(batch)
				batch = make([]*domain.AuditEvent, 0, w.config.BatchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				w.writeBatch(batch)
				batch = make([]*domain.AuditEvent, 0, w.config.BatchSize)
			}
		}
	}
}

func (w *AsyncWriter) writeBatch(batch []*domain.AuditEvent) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := w.auditRepo.CreateAuditEventsBatch(ctx, batch); err != nil {
		w.logger.Error("failed to write audit batch", "error", err, "events", len(batch))
	}
}
