package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	domain "github.com/fichado-app/fichado-backend-go/internal/domain/attendance"
	"github.com/fichado-app/fichado-backend-go/internal/domain/audit"
	"github.com/fichado-app/fichado-backend-go/internal/domain/geofence"
	"github.com/fichado-app/fichado-backend-go/internal/pkg/geo"
	"github.com/fichado-app/fichado-backend-go/internal/repository/memory"
	geofenceservice "github.com/fichado-app/fichado-backend-go/internal/service/geofence"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	siteLatitude  = -12.0464
	siteLongitude = -77.0428
	siteRadius    = 100
)

// Latitude degrees per meter on the reference sphere.
const degPerMeter = 180.0 / (3.141592653589793 * 6371000.0)

var testAuth = jwtauth.New("HS256", []byte("test-secret"), nil)

func authedContext(t *testing.T, employeeID string) context.Context {
	t.Helper()
	token, _, err := testAuth.Encode(map[string]interface{}{
		"employee_id": employeeID,
		"role":        "employee",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

type fixture struct {
	svc     *AttendanceServiceImpl
	ledger  *memory.ShiftLedger
	geofs   *memory.GeofenceConfigStore
	auditor *memory.AuditRecorder
	now     time.Time
}

func newFixture(t *testing.T, configured bool) *fixture {
	t.Helper()

	lima, err := time.LoadLocation("America/Lima")
	require.NoError(t, err)

	ledger := memory.NewShiftLedger()
	geofs := memory.NewGeofenceConfigStore()
	auditor := memory.NewAuditRecorder()

	if configured {
		_, err := geofs.Upsert(context.Background(), geofence.GeofenceConfig{
			CenterLatitude:  siteLatitude,
			CenterLongitude: siteLongitude,
			RadiusMeters:    siteRadius,
			Label:           "Planta Lima",
		})
		require.NoError(t, err)
	}

	geofenceSvc := geofenceservice.NewGeofenceService(geofs, auditor, 0, 5*time.Second)

	f := &fixture{
		ledger:  ledger,
		geofs:   geofs,
		auditor: auditor,
		// A Monday morning, site local time.
		now: time.Date(2026, 3, 2, 8, 0, 0, 0, lima),
	}
	f.svc = &AttendanceServiceImpl{
		ShiftLedger:     ledger,
		geofenceService: geofenceSvc,
		auditor:         auditor,
		siteLocation:    lima,
		storageTimeout:  5 * time.Second,
		now:             func() time.Time { return f.now },
	}
	return f
}

func coords(lat, lon float64) (*float64, *float64) {
	return &lat, &lon
}

func TestClockIn_AtSiteCenter(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := authedContext(t, "emp-1")

	lat, lon := coords(siteLatitude, siteLongitude)
	resp, err := f.svc.ClockIn(ctx, domain.ClockInRequest{
		Method: domain.MethodGPS, Latitude: lat, Longitude: lon,
	})
	require.NoError(t, err)

	assert.True(t, resp.IsOpen)
	assert.Equal(t, "emp-1", resp.EmployeeID)
	assert.Equal(t, "2026-03-02", resp.Date)
	require.NotNil(t, resp.Geofence)
	assert.True(t, resp.Geofence.IsValid)
	assert.InDelta(t, 0, resp.Geofence.DistanceMeters, 0.5)
	assert.Contains(t, resp.Notes, "geofence ok")
	assert.Equal(t, 1, f.ledger.OpenCount("emp-1", "2026-03-02"))
}

func TestClockIn_OutsideGeofence(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := authedContext(t, "emp-1")

	lat, lon := coords(siteLatitude+500*degPerMeter, siteLongitude)
	_, err := f.svc.ClockIn(ctx, domain.ClockInRequest{
		Method: domain.MethodGPS, Latitude: lat, Longitude: lon,
	})

	var geofenceErr *domain.OutsideGeofenceError
	require.ErrorAs(t, err, &geofenceErr)
	assert.InDelta(t, 500, geofenceErr.DistanceMeters, 1)
	assert.Equal(t, float64(siteRadius), geofenceErr.MaxDistanceMeters)
	assert.Equal(t, 0, f.ledger.OpenCount("emp-1", "2026-03-02"))

	// The rejection audit is fire-and-forget.
	require.Eventually(t, func() bool {
		return len(f.auditor.Events()) == 1
	}, time.Second, 10*time.Millisecond)

	event := f.auditor.Events()[0]
	assert.Equal(t, audit.KindClockInRejected, event.Kind)
	assert.Equal(t, "emp-1", event.ActorID)
}

func TestClockIn_SecondAttemptSameDay(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := authedContext(t, "emp-1")

	lat, lon := coords(siteLatitude, siteLongitude)
	first, err := f.svc.ClockIn(ctx, domain.ClockInRequest{
		Method: domain.MethodGPS, Latitude: lat, Longitude: lon,
	})
	require.NoError(t, err)

	_, err = f.svc.ClockIn(ctx, domain.ClockInRequest{
		Method: domain.MethodGPS, Latitude: lat, Longitude: lon,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrShiftAlreadyOpen)

	var openErr *domain.ShiftAlreadyOpenError
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, first.ID, openErr.OpenShiftID)
	assert.Equal(t, 1, f.ledger.OpenCount("emp-1", "2026-03-02"))
}

func TestClockIn_GPSWithoutCoordinates(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := authedContext(t, "emp-1")

	_, err := f.svc.ClockIn(ctx, domain.ClockInRequest{Method: domain.MethodGPS})
	require.Error(t, err)
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
}

func TestClockIn_GeofenceNotConfigured(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := authedContext(t, "emp-1")

	lat, lon := coords(siteLatitude, siteLongitude)
	resp, err := f.svc.ClockIn(ctx, domain.ClockInRequest{
		Method: domain.MethodGPS, Latitude: lat, Longitude: lon,
	})
	require.NoError(t, err)

	assert.Nil(t, resp.Geofence)
	assert.Contains(t, resp.Notes, "geofence not configured")
}

func TestClockIn_ManualMethodSkipsGeofence(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := authedContext(t, "emp-2")

	resp, err := f.svc.ClockIn(ctx, domain.ClockInRequest{
		Method: domain.MethodManual, Notes: "forgot phone",
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Geofence)
	assert.Equal(t, "forgot phone", resp.Notes)
}

func TestClockOut_FullDayRoundTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := authedContext(t, "emp-1")

	lat, lon := coords(siteLatitude, siteLongitude)
	_, err := f.svc.ClockIn(ctx, domain.ClockInRequest{
		Method: domain.MethodGPS, Latitude: lat, Longitude: lon,
	})
	require.NoError(t, err)

	// 08:00 -> 16:30
	f.now = f.now.Add(8*time.Hour + 30*time.Minute)

	resp, err := f.svc.ClockOut(ctx, domain.ClockOutRequest{Latitude: lat, Longitude: lon})
	require.NoError(t, err)

	assert.False(t, resp.IsOpen)
	require.NotNil(t, resp.HoursWorked)
	assert.InDelta(t, 8.5, *resp.HoursWorked, 0.001)
	require.NotNil(t, resp.ClockOutTime)
	assert.Contains(t, resp.Notes, "clock-out geofence ok")
}

func TestClockOut_OutsideGeofenceIsAdvisory(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := authedContext(t, "emp-1")

	lat, lon := coords(siteLatitude, siteLongitude)
	_, err := f.svc.ClockIn(ctx, domain.ClockInRequest{
		Method: domain.MethodGPS, Latitude: lat, Longitude: lon,
	})
	require.NoError(t, err)

	f.now = f.now.Add(9 * time.Hour)

	// Leaving far from the site must still close the shift.
	farLat, farLon := coords(siteLatitude+500*degPerMeter, siteLongitude)
	resp, err := f.svc.ClockOut(ctx, domain.ClockOutRequest{Latitude: farLat, Longitude: farLon})
	require.NoError(t, err)

	assert.False(t, resp.IsOpen)
	assert.Contains(t, resp.Notes, "clock-out outside geofence")
	require.NotNil(t, resp.Geofence)
	assert.False(t, resp.Geofence.IsValid)
}

func TestClockOut_WithoutOpenShift(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := authedContext(t, "emp-1")

	_, err := f.svc.ClockOut(ctx, domain.ClockOutRequest{})
	assert.ErrorIs(t, err, domain.ErrNoOpenShift)
}

func TestClockOut_SecondAttemptFails(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := authedContext(t, "emp-1")

	_, err := f.svc.ClockIn(ctx, domain.ClockInRequest{Method: domain.MethodManual})
	require.NoError(t, err)

	f.now = f.now.Add(8 * time.Hour)
	_, err = f.svc.ClockOut(ctx, domain.ClockOutRequest{})
	require.NoError(t, err)

	_, err = f.svc.ClockOut(ctx, domain.ClockOutRequest{})
	assert.ErrorIs(t, err, domain.ErrNoOpenShift)
}

func TestClockOut_OvernightShift(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := authedContext(t, "emp-1")

	// Clock in at 23:00 local, clock out past midnight.
	f.now = time.Date(2026, 3, 2, 23, 0, 0, 0, f.svc.siteLocation)
	resp, err := f.svc.ClockIn(ctx, domain.ClockInRequest{Method: domain.MethodManual})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", resp.Date)

	f.now = time.Date(2026, 3, 3, 7, 0, 0, 0, f.svc.siteLocation)
	closed, err := f.svc.ClockOut(ctx, domain.ClockOutRequest{})
	require.NoError(t, err)

	assert.Equal(t, "2026-03-02", closed.Date)
	require.NotNil(t, closed.HoursWorked)
	assert.InDelta(t, 8.0, *closed.HoursWorked, 0.001)
}

func TestGetMyShifts_MultiTurnDayAggregates(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := authedContext(t, "emp-1")

	// Morning turn: 08:00 -> 12:00.
	_, err := f.svc.ClockIn(ctx, domain.ClockInRequest{Method: domain.MethodManual})
	require.NoError(t, err)
	f.now = f.now.Add(4 * time.Hour)
	_, err = f.svc.ClockOut(ctx, domain.ClockOutRequest{})
	require.NoError(t, err)

	// Afternoon turn: 13:00 -> 17:30.
	f.now = f.now.Add(time.Hour)
	_, err = f.svc.ClockIn(ctx, domain.ClockInRequest{Method: domain.MethodManual})
	require.NoError(t, err)
	f.now = f.now.Add(4*time.Hour + 30*time.Minute)
	_, err = f.svc.ClockOut(ctx, domain.ClockOutRequest{})
	require.NoError(t, err)

	list, err := f.svc.GetMyShifts(ctx, domain.ShiftFilter{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), list.TotalCount)
	assert.Equal(t, 2, list.Stats.CompleteShifts)
	assert.Equal(t, 0, list.Stats.IncompleteShift)
	assert.InDelta(t, 8.5, list.Stats.TotalHours, 0.001)
	require.Len(t, list.Shifts, 2)
	// Default sort is newest first.
	assert.Equal(t, domain.MethodManual, list.Shifts[0].Method)
}

func TestGetMyShifts_OpenShiftCountsAsIncomplete(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := authedContext(t, "emp-1")

	_, err := f.svc.ClockIn(ctx, domain.ClockInRequest{Method: domain.MethodManual})
	require.NoError(t, err)

	list, err := f.svc.GetMyShifts(ctx, domain.ShiftFilter{})
	require.NoError(t, err)

	assert.Equal(t, 1, list.Stats.IncompleteShift)
	assert.Equal(t, 0, list.Stats.CompleteShifts)
	assert.Equal(t, float64(0), list.Stats.TotalHours)
}

func TestStatus_Transitions(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := authedContext(t, "emp-1")

	status, err := f.svc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.HasOpenShift)
	assert.True(t, status.CanClockIn)
	assert.False(t, status.CanClockOut)

	_, err = f.svc.ClockIn(ctx, domain.ClockInRequest{Method: domain.MethodManual})
	require.NoError(t, err)

	status, err = f.svc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.HasOpenShift)
	require.NotNil(t, status.OpenShift)
	assert.False(t, status.CanClockIn)
	assert.True(t, status.CanClockOut)

	f.now = f.now.Add(8 * time.Hour)
	_, err = f.svc.ClockOut(ctx, domain.ClockOutRequest{})
	require.NoError(t, err)

	status, err = f.svc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.HasOpenShift)
	assert.True(t, status.CanClockIn)
}

func TestClockIn_ConcurrentAttemptsOpenExactlyOne(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := authedContext(t, "emp-1")

	lat, lon := coords(siteLatitude, siteLongitude)

	const attempts = 100
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.ClockIn(ctx, domain.ClockInRequest{
				Method: domain.MethodGPS, Latitude: lat, Longitude: lon,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrShiftAlreadyOpen):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)
	assert.Equal(t, 1, f.ledger.OpenCount("emp-1", "2026-03-02"))
	assert.Equal(t, 0, f.svc.locks.size())
}

func TestClockIn_LockEntriesAreEvicted(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)

	for i := 0; i < 25; i++ {
		ctx := authedContext(t, fmt.Sprintf("emp-%d", i))
		_, err := f.svc.ClockIn(ctx, domain.ClockInRequest{Method: domain.MethodManual})
		require.NoError(t, err)
	}

	// Entries are reference counted and released with the critical section;
	// the map does not accumulate one lock per employee ever seen.
	assert.Equal(t, 0, f.svc.locks.size())
}

func TestListShifts_RequiresEmployeeID(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)

	_, err := f.svc.ListShifts(context.Background(), "", domain.ShiftFilter{})
	assert.Error(t, err)
}
