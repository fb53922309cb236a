package validator

import (
	"math"
	"regexp"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Code    string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

// ToMap returns field -> message, used for the error envelope details.
func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// ToCodeMap returns field -> machine-readable code (e.g. LATITUDE_INVALID).
// Fields without a code fall back to the message.
func (v ValidationErrors) ToCodeMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		if err.Code != "" {
			result[err.Field] = err.Code
		} else {
			result[err.Field] = err.Message
		}
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValidLatitude rejects NaN/Inf and values outside [-90, 90].
func IsValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && !math.IsInf(lat, 0) && lat >= -90 && lat <= 90
}

// IsValidLongitude rejects NaN/Inf and values outside [-180, 180].
func IsValidLongitude(lon float64) bool {
	return !math.IsNaN(lon) && !math.IsInf(lon, 0) && lon >= -180 && lon <= 180
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// IsValidUUID validates the canonical lowercase-insensitive UUID form.
func IsValidUUID(uuid string) bool {
	return uuidRegex.MatchString(strings.ToLower(uuid))
}
