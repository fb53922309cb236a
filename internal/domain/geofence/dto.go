package geofence

import (
	"github.com/fichado-app/fichado-backend-go/internal/pkg/validator"
)

type UpsertConfigRequest struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters int     `json:"radius_meters"`
	Label        string  `json:"label"`
}

func (r *UpsertConfigRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidLatitude(r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Code:    "LATITUDE_INVALID",
			Message: "latitude must be between -90 and 90",
		})
	}

	if !validator.IsValidLongitude(r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Code:    "LONGITUDE_INVALID",
			Message: "longitude must be between -180 and 180",
		})
	}

	if r.RadiusMeters < MinRadiusMeters || r.RadiusMeters > MaxRadiusMeters {
		errs = append(errs, validator.ValidationError{
			Field:   "radius_meters",
			Code:    "RADIUS_INVALID",
			Message: "radius_meters must be between 10 and 10000",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// GeofenceResponse is the admin-facing view of the configuration. When no
// site has been configured yet, Configured is false and the coordinate
// fields hold safe placeholders the UI can render without special-casing.
type GeofenceResponse struct {
	Configured   bool    `json:"configured"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters int     `json:"radius_meters"`
	Label        string  `json:"label"`
	UpdatedAt    *string `json:"updated_at,omitempty"`
	UpdatedBy    *string `json:"updated_by,omitempty"`
}

// GeofenceCheck is attached to attendance responses when GPS was evaluated.
type GeofenceCheck struct {
	DistanceMeters    float64 `json:"distance"`
	MaxDistanceMeters float64 `json:"max_distance"`
	IsValid           bool    `json:"is_valid"`
}

func MapConfigToResponse(cfg GeofenceConfig) GeofenceResponse {
	updatedAt := cfg.UpdatedAt.Format("2006-01-02 15:04:05")
	return GeofenceResponse{
		Configured:   true,
		Latitude:     cfg.CenterLatitude,
		Longitude:    cfg.CenterLongitude,
		RadiusMeters: cfg.RadiusMeters,
		Label:        cfg.Label,
		UpdatedAt:    &updatedAt,
		UpdatedBy:    &cfg.UpdatedBy,
	}
}

// UnconfiguredResponse is returned by GET when no site exists yet.
func UnconfiguredResponse() GeofenceResponse {
	return GeofenceResponse{
		Configured:   false,
		Latitude:     0,
		Longitude:    0,
		RadiusMeters: 0,
		Label:        "",
	}
}
