package geofence

import "time"

// GeofenceConfig is the single active work-site definition. One logical row,
// lazily created on the first admin write, then upserted in place.
type GeofenceConfig struct {
	CenterLatitude  float64
	CenterLongitude float64
	RadiusMeters    int
	Label           string
	UpdatedAt       time.Time
	UpdatedBy       string
}

// ValidationResult is the outcome of checking a reported coordinate against
// the configured geofence. Produced per request, never persisted on its own.
type ValidationResult struct {
	DistanceMeters  float64
	IsWithinRadius  bool
	RadiusUsedMeter int
}

// Validated configuration bounds.
const (
	MinRadiusMeters = 10
	MaxRadiusMeters = 10000
)
