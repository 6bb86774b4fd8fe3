package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/spounge-ai/brainstormity/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRepo struct {
	mu      sync.Mutex
	events  []*domain.AuditEvent
	batches int
}

func (r *recordingRepo) CreateAuditEvent(ctx context.Context, event *domain.AuditEvent) error {
	return r.CreateAuditEventsBatch(ctx, []*domain.AuditEvent{event})
}

func (r *recordingRepo) CreateAuditEventsBatch(ctx context.Context, events []*domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches++
	r.events = append(r.events, events...)
	return nil
}

func (r *recordingRepo) GetAuditHistory(ctx context.Context, clientIdentity string, limit int) ([]*domain.AuditEvent, error) {
	return nil, nil
}

func (r *recordingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type sliceSink struct{ events []*domain.AuditEvent }

func (s *sliceSink) Enqueue(e *domain.AuditEvent) { s.events = append(s.events, e) }

func TestLogger_LogsLabelAndMetadata(t *testing.T) {
	var buf bytes.Buffer
	sink := &sliceSink{}
	l := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), sink)

	ctx := domain.NewContextWithRequestID(context.Background(), "req-1")
	ctx = domain.NewContextWithRemoteAddr(ctx, "10.0.0.1")
	l.AuditLog(ctx, "frontend", "brainstorm", false, errors.New("provider unreachable"))

	out := buf.String()
	assert.Contains(t, out, `"msg":"audit_event"`)
	assert.Contains(t, out, `"client_identity":"frontend"`)
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"error":"provider unreachable"`)

	require.Len(t, sink.events, 1)
	assert.Equal(t, "brainstorm", sink.events[0].Operation)
	assert.Equal(t, "10.0.0.1", sink.events[0].RequestMetadata["source_ip"])
	assert.False(t, sink.events[0].Success)
}

func TestAsyncWriter_FlushesOnStop(t *testing.T) {
	repo := &recordingRepo{}
	w := NewAsyncWriter(slog.New(slog.DiscardHandler), repo, AsyncWriterConfig{
		ChannelBufferSize: 16,
		WorkerCount:       2,
		BatchSize:         4,
		BatchTimeout:      time.Hour,
	})
	require.NoError(t, w.Start(context.Background()))
	assert.True(t, w.Health(context.Background()).Ready)

	for i := 0; i < 10; i++ {
		w.Enqueue(&domain.AuditEvent{Operation: "issue"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))

	assert.Equal(t, 10, repo.count())
	assert.False(t, w.Health(context.Background()).Ready)

	w.Enqueue(&domain.AuditEvent{Operation: "late"})
	assert.Equal(t, int64(1), w.Dropped())
	assert.NoError(t, w.Stop(ctx))
}

func TestAsyncWriter_FlushesOnTicker(t *testing.T) {
	repo := &recordingRepo{}
	w := NewAsyncWriter(slog.New(slog.DiscardHandler), repo, AsyncWriterConfig{
		ChannelBufferSize: 4,
		WorkerCount:       1,
		BatchSize:         100,
		BatchTimeout:      10 * time.Millisecond,
	})
	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Stop(context.Background()) }()

	w.Enqueue(&domain.AuditEvent{Operation: "revoke"})

	assert.Eventually(t, func() bool { return repo.count() == 1 }, time.Second, 5*time.Millisecond)
}
