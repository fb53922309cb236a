package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fichado-app/fichado-backend-go/internal/domain/audit"
	"github.com/fichado-app/fichado-backend-go/internal/pkg/database"
)

type auditLog struct {
	db *database.DB
}

// Record implements audit.Recorder. Callers invoke this best-effort; errors
// are returned so the caller can log them, never to roll anything back.
func (a *auditLog) Record(ctx context.Context, event audit.AuditEvent) error {
	q := GetQuerier(ctx, a.db)

	detail, err := json.Marshal(event.Detail)
	if err != nil {
		return fmt.Errorf("failed to marshal audit detail: %w", err)
	}

	query := `
		INSERT INTO audit_events (id, kind, actor_id, detail, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := q.Exec(ctx, query, event.ID, event.Kind, event.ActorID, detail, event.OccurredAt); err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}

	return nil
}

func NewAuditLog(db *database.DB) audit.Recorder {
	return &auditLog{db: db}
}
