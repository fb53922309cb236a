package geofence

import "errors"

var (
	// ErrNotConfigured signals that no work site has ever been configured.
	// Callers decide policy; the store never fabricates a default location.
	ErrNotConfigured = errors.New("geofence is not configured")
)
