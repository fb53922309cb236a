package geofence

import "context"

// GeofenceConfigRepository persists the singleton work-site definition.
type GeofenceConfigRepository interface {
	// GetActive returns the current configuration or ErrNotConfigured.
	GetActive(ctx context.Context) (GeofenceConfig, error)

	// Upsert replaces the singleton row. The write is a single statement so
	// concurrent admin updates cannot interleave partial field sets.
	Upsert(ctx context.Context, cfg GeofenceConfig) (GeofenceConfig, error)
}
