package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spounge-ai/brainstormity/internal/domain"
)

// EventSink receives audit events after they have been logged. It must not block.
type EventSink interface {
	Enqueue(event *domain.AuditEvent)
}

// Logger implements the domain.AuditLogger interface.
type Logger struct {
	logger *slog.Logger
	sink   EventSink
}

// NewAuditLogger creates a new audit logger. sink may be nil when events are only logged.
func NewAuditLogger(logger *slog.Logger, sink EventSink) *Logger {
	return &Logger{
		logger: logger,
		sink:   sink,
	}
}

// AuditLog records an operation against a client label. Tokens never reach this method.
func (l *Logger) AuditLog(ctx context.Context, clientIdentity domain.ClientIdentity, operation string, success bool, err error) {
	event := &domain.AuditEvent{
		ID:              uuid.New().String(),
		ClientIdentity:  clientIdentity.String(),
		Operation:       operation,
		Success:         success,
		Timestamp:       time.Now().UTC(),
		RequestMetadata: requestMetadata(ctx),
	}

	if err != nil {
		event.Error = err.Error()
	}

	logAttrs := []slog.Attr{
		slog.String("audit_id", event.ID),
		slog.String("client_identity", event.ClientIdentity),
		slog.String("operation", operation),
		slog.Bool("success", success),
		slog.Time("timestamp", event.Timestamp),
	}
	for k, v := range event.RequestMetadata {
		logAttrs = append(logAttrs, slog.String(k, v))
	}
	if err != nil {
		logAttrs = append(logAttrs, slog.String("error", event.Error))
	}

	l.logger.LogAttrs(ctx, slog.LevelInfo, "audit_event", logAttrs...)

	if l.sink != nil {
		l.sink.Enqueue(event)
	}
}

func requestMetadata(ctx context.Context) map[string]string {
	md := make(map[string]string, 2)
	if id, ok := domain.RequestIDFromContext(ctx); ok {
		md["request_id"] = id
	}
	if addr, ok := domain.RemoteAddrFromContext(ctx); ok {
		md["source_ip"] = addr
	}
	return md
}
