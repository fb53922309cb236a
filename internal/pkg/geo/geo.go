package geo

import (
	"errors"
	"math"

	"github.com/fichado-app/fichado-backend-go/internal/domain/geofence"
)

// ErrInvalidCoordinate is returned for NaN/Inf or out-of-range inputs.
// Missing coordinates must fail validation, never degrade to (0,0).
var ErrInvalidCoordinate = errors.New("invalid coordinate")

const earthRadiusMeters = 6371000

// HaversineDistance computes the great-circle distance between two points in
// meters on a spherical Earth. Accurate at short range, which matters for
// radii as small as 10m.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Validate checks a reported coordinate against the configured site. A point
// exactly on the boundary is within the radius (<=, not <). Pure and
// deterministic; no side effects.
func Validate(lat, lon float64, cfg geofence.GeofenceConfig) (geofence.ValidationResult, error) {
	if !validCoordinate(lat, lon) {
		return geofence.ValidationResult{}, ErrInvalidCoordinate
	}

	distance := HaversineDistance(lat, lon, cfg.CenterLatitude, cfg.CenterLongitude)

	return geofence.ValidationResult{
		DistanceMeters:  distance,
		IsWithinRadius:  distance <= float64(cfg.RadiusMeters),
		RadiusUsedMeter: cfg.RadiusMeters,
	}, nil
}

func validCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
