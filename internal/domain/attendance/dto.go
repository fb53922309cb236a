package attendance

import (
	"strings"

	"github.com/fichado-app/fichado-backend-go/internal/domain/geofence"
	"github.com/fichado-app/fichado-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type ClockInRequest struct {
	Method    Method   `json:"method"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	QRCode    *string  `json:"qr_code,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	switch r.Method {
	case MethodGPS, MethodManual, MethodQR:
	case "":
		r.Method = MethodGPS
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "method",
			Code:    "METHOD_INVALID",
			Message: "method must be one of: GPS, MANUAL, QR",
		})
	}

	// A coordinate must arrive as a complete pair. NaN or out-of-range
	// values fail here rather than being treated as (0,0) downstream.
	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Code:    "COORDINATE_INCOMPLETE",
			Message: "latitude and longitude must be provided together",
		})
	}
	if r.Latitude != nil && !validator.IsValidLatitude(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Code:    "LATITUDE_INVALID",
			Message: "latitude must be between -90 and 90",
		})
	}
	if r.Longitude != nil && !validator.IsValidLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Code:    "LONGITUDE_INVALID",
			Message: "longitude must be between -180 and 180",
		})
	}

	if r.Method == MethodQR && (r.QRCode == nil || validator.IsEmpty(*r.QRCode)) {
		errs = append(errs, validator.ValidationError{
			Field:   "qr_code",
			Code:    "QR_CODE_REQUIRED",
			Message: "qr_code is required when method is QR",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ClockOutRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

func (r *ClockOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Code:    "COORDINATE_INCOMPLETE",
			Message: "latitude and longitude must be provided together",
		})
	}
	if r.Latitude != nil && !validator.IsValidLatitude(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Code:    "LATITUDE_INVALID",
			Message: "latitude must be between -90 and 90",
		})
	}
	if r.Longitude != nil && !validator.IsValidLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Code:    "LONGITUDE_INVALID",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ShiftResponse struct {
	ID                string                  `json:"id"`
	EmployeeID        string                  `json:"employee_id"`
	Date              string                  `json:"date"`
	ClockInTime       string                  `json:"clock_in_time"`
	ClockOutTime      *string                 `json:"clock_out_time,omitempty"`
	ClockInLatitude   *float64                `json:"clock_in_latitude,omitempty"`
	ClockInLongitude  *float64                `json:"clock_in_longitude,omitempty"`
	ClockOutLatitude  *float64                `json:"clock_out_latitude,omitempty"`
	ClockOutLongitude *float64                `json:"clock_out_longitude,omitempty"`
	Method            Method                  `json:"method"`
	Notes             string                  `json:"notes,omitempty"`
	HoursWorked       *float64                `json:"hours_worked,omitempty"`
	IsOpen            bool                    `json:"is_open"`
	Geofence          *geofence.GeofenceCheck `json:"geofence,omitempty"`
}

type ShiftFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *ShiftFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // Default descending (newest first)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ShiftStats are derived over the returned window, never stored.
type ShiftStats struct {
	TotalHours      float64 `json:"total_hours"`
	CompleteShifts  int     `json:"complete_shifts"`
	IncompleteShift int     `json:"incomplete_shifts"`
}

type ListShiftsResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Stats      ShiftStats      `json:"stats"`
	Shifts     []ShiftResponse `json:"shifts"`
}

// StatusResponse tells the mobile client which action is currently legal.
type StatusResponse struct {
	HasOpenShift bool           `json:"has_open_shift"`
	OpenShift    *ShiftResponse `json:"open_shift,omitempty"`
	CanClockIn   bool           `json:"can_clock_in"`
	CanClockOut  bool           `json:"can_clock_out"`
}
