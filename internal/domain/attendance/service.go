package attendance

import "context"

// AttendanceService is the clock-in/clock-out state machine. The caller's
// identity comes from the JWT claims carried in ctx.
type AttendanceService interface {
	// ClockIn opens a shift after geofence validation. Rejections are
	// deterministic and client-correctable (OutsideGeofenceError,
	// ShiftAlreadyOpenError); only ErrStorageTimeout is retryable.
	ClockIn(ctx context.Context, req ClockInRequest) (ShiftResponse, error)

	// ClockOut closes the open shift. Geofence validation is advisory here:
	// a failed check annotates the record but never blocks leaving.
	ClockOut(ctx context.Context, req ClockOutRequest) (ShiftResponse, error)

	// GetMyShifts lists the authenticated employee's shifts with aggregates.
	GetMyShifts(ctx context.Context, filter ShiftFilter) (ListShiftsResponse, error)

	// ListShifts lists any employee's shifts (supervisor/admin).
	ListShifts(ctx context.Context, employeeID string, filter ShiftFilter) (ListShiftsResponse, error)

	// Status reports whether the employee can currently clock in or out.
	Status(ctx context.Context) (StatusResponse, error)
}
