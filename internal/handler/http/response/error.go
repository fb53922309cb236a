package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fichado-app/fichado-backend-go/internal/domain/attendance"
	"github.com/fichado-app/fichado-backend-go/internal/domain/geofence"
	"github.com/fichado-app/fichado-backend-go/internal/domain/user"
	"github.com/fichado-app/fichado-backend-go/internal/pkg/database"
	"github.com/fichado-app/fichado-backend-go/internal/pkg/geo"
	"github.com/fichado-app/fichado-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap(), validationErrs.ToCodeMap())
		return
	}

	// Geofence rejection carries structure so the client can tell the
	// employee how far off they are.
	var geofenceErr *attendance.OutsideGeofenceError
	if errors.As(err, &geofenceErr) {
		BadRequestWithCode(w, "OUTSIDE_GEOFENCE", geofenceErr.Error(), map[string]string{
			"distance":     fmt.Sprintf("%.1f", geofenceErr.DistanceMeters),
			"max_distance": fmt.Sprintf("%.0f", geofenceErr.MaxDistanceMeters),
		})
		return
	}

	var openErr *attendance.ShiftAlreadyOpenError
	if errors.As(err, &openErr) {
		ConflictWithDetails(w, "An open shift already exists for today", map[string]string{
			"open_shift_id": openErr.OpenShiftID,
		})
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrShiftAlreadyOpen):
		Conflict(w, "An open shift already exists for today")
	case errors.Is(err, attendance.ErrNoOpenShift):
		Conflict(w, "No open shift to close")
	case errors.Is(err, attendance.ErrShiftNotFound):
		NotFound(w, "Shift record not found")

	// Geofence domain errors
	case errors.Is(err, geofence.ErrNotConfigured):
		NotFound(w, "Geofence is not configured")
	case errors.Is(err, geo.ErrInvalidCoordinate):
		ValidationError(w, map[string]string{
			"latitude": "coordinates are missing, out of range, or not finite",
		}, map[string]string{
			"latitude": "COORDINATE_INVALID",
		})

	// Access errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or missing token")
	case errors.Is(err, user.ErrSupervisorAccessRequired):
		Forbidden(w, "Supervisor or admin access required")
	case errors.Is(err, user.ErrAdminAccessRequired):
		Forbidden(w, "Admin access required")

	// Transient storage failure: the client may retry.
	case errors.Is(err, database.ErrStorageTimeout):
		ServiceUnavailable(w, "Storage temporarily unavailable, please retry")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
