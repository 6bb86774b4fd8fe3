package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	consts "github.com/spounge-ai/brainstormity/internal/constants"
	"github.com/spounge-ai/brainstormity/internal/domain"
)

type AuditRepository struct {
	db *pgxpool.Pool
}

var _ domain.AuditRepository = (*AuditRepository)(nil)

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) CreateAuditEvent(ctx context.Context, event *domain.AuditEvent) error {
	_, err := r.db.Exec(ctx, consts.Queries[consts.StmtInsertAuditEvent], auditArgs(event)...)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// CreateAuditEventsBatch sends all inserts in one round trip.
func (r *AuditRepository) CreateAuditEventsBatch(ctx context.Context, events []*domain.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(consts.Queries[consts.StmtInsertAuditEvent], auditArgs(event)...)
	}

	br := r.db.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()

	for range events {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert audit batch: %w", err)
		}
	}
	return nil
}

func (r *AuditRepository) GetAuditHistory(ctx context.Context, clientIdentity string, limit int) ([]*domain.AuditEvent, error) {
	rows, err := r.db.Query(ctx, consts.Queries[consts.StmtGetAuditHistory], clientIdentity, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit history: %w", err)
	}
	defer rows.Close()

	var events []*domain.AuditEvent
	for rows.Next() {
		var event domain.AuditEvent
		if err := rows.Scan(&event.ID, &event.ClientIdentity, &event.Operation, &event.Success,
			&event.Error, &event.RequestMetadata, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}

func auditArgs(event *domain.AuditEvent) []any {
	metadata := event.RequestMetadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	return []any{event.ID, event.ClientIdentity, event.Operation, event.Success, event.Error, metadata, event.Timestamp}
}
