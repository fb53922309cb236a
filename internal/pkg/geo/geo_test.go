package geo

import (
	"math"
	"testing"

	"github.com/fichado-app/fichado-backend-go/internal/domain/geofence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Degrees of latitude per meter on the 6371km sphere.
const degPerMeter = 180.0 / (math.Pi * 6371000)

var limaSite = geofence.GeofenceConfig{
	CenterLatitude:  -12.0464,
	CenterLongitude: -77.0428,
	RadiusMeters:    100,
	Label:           "Planta Lima",
}

func TestHaversineDistance_ZeroAtSamePoint(t *testing.T) {
	d := HaversineDistance(-12.0464, -77.0428, -12.0464, -77.0428)
	assert.Equal(t, 0.0, d)
}

func TestHaversineDistance_KnownOffsets(t *testing.T) {
	cases := []struct {
		name   string
		meters float64
	}{
		{"ten meters", 10},
		{"one hundred meters", 100},
		{"five hundred meters", 500},
		{"ten kilometers", 10000},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			lat2 := limaSite.CenterLatitude + c.meters*degPerMeter
			d := HaversineDistance(limaSite.CenterLatitude, limaSite.CenterLongitude, lat2, limaSite.CenterLongitude)
			// Sub-meter accuracy even at short range.
			assert.InDelta(t, c.meters, d, 0.5)
		})
	}
}

func TestValidate_CenterIsWithinRadius(t *testing.T) {
	res, err := Validate(limaSite.CenterLatitude, limaSite.CenterLongitude, limaSite)
	require.NoError(t, err)
	assert.True(t, res.IsWithinRadius)
	assert.Equal(t, 0.0, res.DistanceMeters)
	assert.Equal(t, 100, res.RadiusUsedMeter)
}

func TestValidate_Boundary(t *testing.T) {
	// A point at the radius is valid; one meter farther is not.
	onBoundary := limaSite.CenterLatitude + 100*degPerMeter
	beyond := limaSite.CenterLatitude + 101*degPerMeter

	res, err := Validate(onBoundary, limaSite.CenterLongitude, limaSite)
	require.NoError(t, err)
	assert.True(t, res.IsWithinRadius, "point at the boundary must validate (<=, not <)")

	res, err = Validate(beyond, limaSite.CenterLongitude, limaSite)
	require.NoError(t, err)
	assert.False(t, res.IsWithinRadius)
	assert.InDelta(t, 101, res.DistanceMeters, 0.5)
}

func TestValidate_FiveHundredMetersOut(t *testing.T) {
	lat := limaSite.CenterLatitude + 500*degPerMeter
	res, err := Validate(lat, limaSite.CenterLongitude, limaSite)
	require.NoError(t, err)
	assert.False(t, res.IsWithinRadius)
	assert.InDelta(t, 500, res.DistanceMeters, 1)
}

func TestValidate_Monotonic(t *testing.T) {
	// Walking away from center never flips the result back to valid.
	sawInvalid := false
	for meters := 0.0; meters <= 300; meters += 7.5 {
		lat := limaSite.CenterLatitude + meters*degPerMeter
		res, err := Validate(lat, limaSite.CenterLongitude, limaSite)
		require.NoError(t, err)
		if sawInvalid {
			assert.False(t, res.IsWithinRadius, "validity flipped back at %.1fm", meters)
		}
		if !res.IsWithinRadius {
			sawInvalid = true
		}
	}
	assert.True(t, sawInvalid)
}

func TestValidate_RejectsBadCoordinates(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon float64
	}{
		{"nan latitude", math.NaN(), -77.0},
		{"nan longitude", -12.0, math.NaN()},
		{"positive infinity", math.Inf(1), -77.0},
		{"latitude out of range", 91, -77.0},
		{"longitude out of range", -12.0, -181},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Validate(c.lat, c.lon, limaSite)
			assert.ErrorIs(t, err, ErrInvalidCoordinate)
		})
	}
}
