package attendance

import (
	"math"
	"time"
)

type Method string

const (
	MethodGPS    Method = "GPS"
	MethodManual Method = "MANUAL"
	MethodQR     Method = "QR"
)

// ShiftRecord is one row per clock-in event. A record with a nil ClockOut is
// an open shift; at most one may exist per (EmployeeID, Date) at any time.
// Closed records are immutable and never deleted by the core.
type ShiftRecord struct {
	ID                string
	EmployeeID        string
	Date              string // YYYY-MM-DD, day of clock-in in the site time zone
	ClockIn           time.Time
	ClockOut          *time.Time
	ClockInLatitude   *float64
	ClockInLongitude  *float64
	ClockOutLatitude  *float64
	ClockOutLongitude *float64
	Method            Method
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsOpen reports whether the shift has not been closed yet.
func (s ShiftRecord) IsOpen() bool {
	return s.ClockOut == nil
}

// HoursWorked returns elapsed hours rounded to two decimals. For an open
// shift the value is computed against now for display only, never persisted.
func (s ShiftRecord) HoursWorked(now time.Time) float64 {
	end := now
	if s.ClockOut != nil {
		end = *s.ClockOut
	}
	hours := end.Sub(s.ClockIn).Hours()
	if hours < 0 {
		hours = 0
	}
	return math.Round(hours*100) / 100
}

// ShiftClosure carries the mutation applied exactly once on clock-out.
type ShiftClosure struct {
	ClockOut  time.Time
	Latitude  *float64
	Longitude *float64
	Notes     string
}
