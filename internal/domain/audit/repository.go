package audit

import "context"

// Recorder receives audit events from the core. Implementations must be safe
// for concurrent use; callers invoke Record from detached goroutines.
type Recorder interface {
	Record(ctx context.Context, event AuditEvent) error
}
