package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	ErrShiftAlreadyOpen = errors.New("an open shift already exists for today")
	ErrNoOpenShift      = errors.New("no open shift to close")
	ErrShiftNotFound    = errors.New("shift record not found")
)

// ShiftAlreadyOpenError carries the existing open shift so the client can
// offer "close it first". Unwraps to ErrShiftAlreadyOpen.
type ShiftAlreadyOpenError struct {
	OpenShiftID string
}

func (e *ShiftAlreadyOpenError) Error() string {
	return fmt.Sprintf("an open shift already exists for today (shift %s)", e.OpenShiftID)
}

func (e *ShiftAlreadyOpenError) Unwrap() error { return ErrShiftAlreadyOpen }

// OutsideGeofenceError is a deterministic, client-correctable rejection with
// enough structure for the UI to explain how far off the employee was.
type OutsideGeofenceError struct {
	DistanceMeters    float64
	MaxDistanceMeters float64
}

func (e *OutsideGeofenceError) Error() string {
	return fmt.Sprintf("outside allowed area: %.0fm from site, maximum is %.0fm",
		e.DistanceMeters, e.MaxDistanceMeters)
}
