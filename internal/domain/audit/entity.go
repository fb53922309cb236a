package audit

import "time"

type EventKind string

const (
	KindGeofenceUpdated EventKind = "GEOFENCE_UPDATED"
	KindClockInRejected EventKind = "CLOCK_IN_REJECTED"
)

// AuditEvent is a compliance trail entry. Events are fire-and-forget: a
// failed write is logged and never rolls back the operation that caused it.
type AuditEvent struct {
	ID         string
	Kind       EventKind
	ActorID    string
	Detail     map[string]any
	OccurredAt time.Time
}
