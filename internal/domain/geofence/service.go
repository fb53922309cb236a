package geofence

import "context"

// GeofenceService defines business logic for work-site configuration.
// Role enforcement (admin/supervisor) is the router's responsibility.
type GeofenceService interface {
	// GetActiveConfig returns the current configuration or ErrNotConfigured.
	GetActiveConfig(ctx context.Context) (GeofenceConfig, error)

	// UpsertConfig validates and replaces the singleton configuration.
	// Every successful write emits a best-effort audit event.
	UpsertConfig(ctx context.Context, req UpsertConfigRequest) (GeofenceConfig, error)
}
