package memory

import (
	"context"
	"sync"

	"github.com/fichado-app/fichado-backend-go/internal/domain/audit"
)

type AuditRecorder struct {
	mu     sync.Mutex
	events []audit.AuditEvent
}

func NewAuditRecorder() *AuditRecorder {
	return &AuditRecorder{}
}

func (r *AuditRecorder) Record(ctx context.Context, event audit.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a snapshot; test helper.
func (r *AuditRecorder) Events() []audit.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.AuditEvent, len(r.events))
	copy(out, r.events)
	return out
}
