package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/fichado-app/fichado-backend-go/internal/domain/attendance"
	"github.com/fichado-app/fichado-backend-go/internal/domain/audit"
	"github.com/fichado-app/fichado-backend-go/internal/domain/geofence"
	"github.com/fichado-app/fichado-backend-go/internal/pkg/database"
	"github.com/fichado-app/fichado-backend-go/internal/pkg/geo"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

type AttendanceServiceImpl struct {
	attendance.ShiftLedger
	geofenceService geofence.GeofenceService
	auditor         audit.Recorder
	siteLocation    *time.Location
	storageTimeout  time.Duration
	now             func() time.Time

	// Serializes clock-in per employee so duplicate taps fail
	// deterministically instead of racing to the storage constraint. The
	// ledger's own uniqueness guarantee remains the backstop.
	locks keyedMutex
}

// keyedMutex hands out per-key locks with reference counting, so entries are
// evicted once the last holder releases and the map does not grow with every
// employee ID seen over the process lifetime.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// size reports the number of live entries; test helper.
func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

func employeeFromClaims(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", fmt.Errorf("employee_id claim is missing or invalid")
	}

	return employeeID, nil
}

func mapStorageErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return database.ErrStorageTimeout
	}
	return err
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ShiftResponse{}, err
	}

	employeeID, err := employeeFromClaims(ctx)
	if err != nil {
		return attendance.ShiftResponse{}, err
	}

	// The server clock in the site time zone is the source of truth for
	// "today"; device time is never trusted for dates.
	nowUTC := a.now().UTC()
	dateLocal := nowUTC.In(a.siteLocation).Format("2006-01-02")

	var check *geofence.GeofenceCheck
	notes := strings.TrimSpace(req.Notes)

	cfg, cfgErr := a.geofenceService.GetActiveConfig(ctx)
	switch {
	case cfgErr == nil && req.Latitude != nil:
		result, err := geo.Validate(*req.Latitude, *req.Longitude, cfg)
		if err != nil {
			return attendance.ShiftResponse{}, fmt.Errorf("failed to validate location: %w", err)
		}
		check = &geofence.GeofenceCheck{
			DistanceMeters:    math.Round(result.DistanceMeters*10) / 10,
			MaxDistanceMeters: float64(result.RadiusUsedMeter),
			IsValid:           result.IsWithinRadius,
		}
		if !result.IsWithinRadius {
			go a.recordAudit(audit.AuditEvent{
				ID:      uuid.NewString(),
				Kind:    audit.KindClockInRejected,
				ActorID: employeeID,
				Detail: map[string]any{
					"distance_meters": check.DistanceMeters,
					"max_distance":    check.MaxDistanceMeters,
					"site":            cfg.Label,
				},
				OccurredAt: nowUTC,
			})
			return attendance.ShiftResponse{}, &attendance.OutsideGeofenceError{
				DistanceMeters:    check.DistanceMeters,
				MaxDistanceMeters: check.MaxDistanceMeters,
			}
		}
		notes = appendNote(notes, fmt.Sprintf("geofence ok: %.0fm of %dm (%s)",
			result.DistanceMeters, result.RadiusUsedMeter, cfg.Label))

	case cfgErr == nil && req.Method == attendance.MethodGPS:
		// GPS capture with no coordinate: fail validation rather than
		// treating the position as (0,0).
		return attendance.ShiftResponse{}, fmt.Errorf("failed to validate location: %w", geo.ErrInvalidCoordinate)

	case errors.Is(cfgErr, geofence.ErrNotConfigured):
		// Missing configuration must never silently disable attendance
		// tracking; accept the event but flag it as unvalidated.
		if req.Method == attendance.MethodGPS {
			notes = appendNote(notes, "geofence not configured; location unvalidated")
		}

	case cfgErr != nil:
		return attendance.ShiftResponse{}, mapStorageErr(cfgErr)
	}

	// Critical section: check-then-insert for this employee.
	unlock := a.locks.lock(employeeID)
	defer unlock()

	storageCtx, cancel := context.WithTimeout(ctx, a.storageTimeout)
	defer cancel()

	open, err := a.ShiftLedger.FindOpen(storageCtx, employeeID, dateLocal)
	if err != nil {
		return attendance.ShiftResponse{}, mapStorageErr(fmt.Errorf("failed to look up open shift: %w", err))
	}
	if open != nil {
		return attendance.ShiftResponse{}, &attendance.ShiftAlreadyOpenError{OpenShiftID: open.ID}
	}

	record := attendance.ShiftRecord{
		EmployeeID:       employeeID,
		Date:             dateLocal,
		ClockIn:          nowUTC,
		ClockInLatitude:  req.Latitude,
		ClockInLongitude: req.Longitude,
		Method:           req.Method,
		Notes:            notes,
	}

	created, err := a.ShiftLedger.Open(storageCtx, record)
	if err != nil {
		if errors.Is(err, attendance.ErrShiftAlreadyOpen) {
			// Lost a race despite the lock (e.g. a second instance); report
			// the surviving shift.
			if existing, findErr := a.ShiftLedger.FindOpen(storageCtx, employeeID, dateLocal); findErr == nil && existing != nil {
				return attendance.ShiftResponse{}, &attendance.ShiftAlreadyOpenError{OpenShiftID: existing.ID}
			}
			return attendance.ShiftResponse{}, attendance.ErrShiftAlreadyOpen
		}
		return attendance.ShiftResponse{}, mapStorageErr(fmt.Errorf("failed to open shift: %w", err))
	}

	return mapShiftToResponse(created, a.now(), check), nil
}

// ClockOut implements attendance.AttendanceService. Geofence validation here
// is advisory only: diagnostics are attached but a failed check never traps
// an employee unable to leave a location.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ShiftResponse{}, err
	}

	employeeID, err := employeeFromClaims(ctx)
	if err != nil {
		return attendance.ShiftResponse{}, err
	}

	nowUTC := a.now().UTC()

	var check *geofence.GeofenceCheck
	notes := strings.TrimSpace(req.Notes)

	if req.Latitude != nil {
		if cfg, cfgErr := a.geofenceService.GetActiveConfig(ctx); cfgErr == nil {
			if result, vErr := geo.Validate(*req.Latitude, *req.Longitude, cfg); vErr == nil {
				check = &geofence.GeofenceCheck{
					DistanceMeters:    math.Round(result.DistanceMeters*10) / 10,
					MaxDistanceMeters: float64(result.RadiusUsedMeter),
					IsValid:           result.IsWithinRadius,
				}
				if result.IsWithinRadius {
					notes = appendNote(notes, fmt.Sprintf("clock-out geofence ok: %.0fm of %dm",
						result.DistanceMeters, result.RadiusUsedMeter))
				} else {
					notes = appendNote(notes, fmt.Sprintf("clock-out outside geofence: %.0fm of %dm",
						result.DistanceMeters, result.RadiusUsedMeter))
				}
			}
		}
	}

	storageCtx, cancel := context.WithTimeout(ctx, a.storageTimeout)
	defer cancel()

	open, err := a.findOpenAroundNow(storageCtx, employeeID, nowUTC)
	if err != nil {
		return attendance.ShiftResponse{}, mapStorageErr(err)
	}
	if open == nil {
		return attendance.ShiftResponse{}, attendance.ErrNoOpenShift
	}

	fullNotes := open.Notes
	if notes != "" {
		fullNotes = appendNote(open.Notes, notes)
	}

	closed, err := a.ShiftLedger.Close(storageCtx, open.ID, attendance.ShiftClosure{
		ClockOut:  nowUTC,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Notes:     fullNotes,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrNoOpenShift) {
			return attendance.ShiftResponse{}, attendance.ErrNoOpenShift
		}
		return attendance.ShiftResponse{}, mapStorageErr(fmt.Errorf("failed to close shift: %w", err))
	}

	return mapShiftToResponse(closed, a.now(), check), nil
}

// findOpenAroundNow looks for today's open shift first and falls back to the
// previous site-local day, so an overnight shift can still be closed.
func (a *AttendanceServiceImpl) findOpenAroundNow(ctx context.Context, employeeID string, nowUTC time.Time) (*attendance.ShiftRecord, error) {
	nowLocal := nowUTC.In(a.siteLocation)

	open, err := a.ShiftLedger.FindOpen(ctx, employeeID, nowLocal.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to look up open shift: %w", err)
	}
	if open != nil {
		return open, nil
	}

	yesterday := nowLocal.AddDate(0, 0, -1).Format("2006-01-02")
	open, err = a.ShiftLedger.FindOpen(ctx, employeeID, yesterday)
	if err != nil {
		return nil, fmt.Errorf("failed to look up open shift: %w", err)
	}
	return open, nil
}

// GetMyShifts implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyShifts(ctx context.Context, filter attendance.ShiftFilter) (attendance.ListShiftsResponse, error) {
	employeeID, err := employeeFromClaims(ctx)
	if err != nil {
		return attendance.ListShiftsResponse{}, err
	}
	return a.listShifts(ctx, employeeID, filter)
}

// ListShifts implements attendance.AttendanceService. Role enforcement for
// the cross-employee view is the router's responsibility.
func (a *AttendanceServiceImpl) ListShifts(ctx context.Context, employeeID string, filter attendance.ShiftFilter) (attendance.ListShiftsResponse, error) {
	if employeeID == "" {
		return attendance.ListShiftsResponse{}, fmt.Errorf("employee_id is required")
	}
	return a.listShifts(ctx, employeeID, filter)
}

func (a *AttendanceServiceImpl) listShifts(ctx context.Context, employeeID string, filter attendance.ShiftFilter) (attendance.ListShiftsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListShiftsResponse{}, err
	}

	storageCtx, cancel := context.WithTimeout(ctx, a.storageTimeout)
	defer cancel()

	shifts, total, err := a.ShiftLedger.ListForEmployee(storageCtx, employeeID, filter)
	if err != nil {
		return attendance.ListShiftsResponse{}, mapStorageErr(fmt.Errorf("failed to list shifts: %w", err))
	}

	now := a.now()
	responses := make([]attendance.ShiftResponse, 0, len(shifts))
	stats := attendance.ShiftStats{}
	for _, s := range shifts {
		responses = append(responses, mapShiftToResponse(s, now, nil))
		if s.IsOpen() {
			stats.IncompleteShift++
		} else {
			stats.CompleteShifts++
			stats.TotalHours += s.HoursWorked(now)
		}
	}
	stats.TotalHours = math.Round(stats.TotalHours*100) / 100

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))

	return attendance.ListShiftsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Stats:      stats,
		Shifts:     responses,
	}, nil
}

// Status implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Status(ctx context.Context) (attendance.StatusResponse, error) {
	employeeID, err := employeeFromClaims(ctx)
	if err != nil {
		return attendance.StatusResponse{}, err
	}

	storageCtx, cancel := context.WithTimeout(ctx, a.storageTimeout)
	defer cancel()

	open, err := a.findOpenAroundNow(storageCtx, employeeID, a.now().UTC())
	if err != nil {
		return attendance.StatusResponse{}, mapStorageErr(err)
	}

	if open == nil {
		return attendance.StatusResponse{
			HasOpenShift: false,
			CanClockIn:   true,
			CanClockOut:  false,
		}, nil
	}

	resp := mapShiftToResponse(*open, a.now(), nil)
	return attendance.StatusResponse{
		HasOpenShift: true,
		OpenShift:    &resp,
		CanClockIn:   false,
		CanClockOut:  true,
	}, nil
}

func (a *AttendanceServiceImpl) recordAudit(event audit.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), a.storageTimeout)
	defer cancel()

	if err := a.auditor.Record(ctx, event); err != nil {
		slog.Error("audit write failed", "kind", event.Kind, "error", err)
	}
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + " | " + note
}

func mapShiftToResponse(s attendance.ShiftRecord, now time.Time, check *geofence.GeofenceCheck) attendance.ShiftResponse {
	resp := attendance.ShiftResponse{
		ID:                s.ID,
		EmployeeID:        s.EmployeeID,
		Date:              s.Date,
		ClockInTime:       s.ClockIn.Format("2006-01-02 15:04:05"),
		ClockInLatitude:   s.ClockInLatitude,
		ClockInLongitude:  s.ClockInLongitude,
		ClockOutLatitude:  s.ClockOutLatitude,
		ClockOutLongitude: s.ClockOutLongitude,
		Method:            s.Method,
		Notes:             s.Notes,
		IsOpen:            s.IsOpen(),
		Geofence:          check,
	}

	hours := s.HoursWorked(now)
	resp.HoursWorked = &hours

	if s.ClockOut != nil {
		out := s.ClockOut.Format("2006-01-02 15:04:05")
		resp.ClockOutTime = &out
	}

	return resp
}

func NewAttendanceService(
	ledger attendance.ShiftLedger,
	geofenceService geofence.GeofenceService,
	auditor audit.Recorder,
	siteLocation *time.Location,
	storageTimeout time.Duration,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		ShiftLedger:     ledger,
		geofenceService: geofenceService,
		auditor:         auditor,
		siteLocation:    siteLocation,
		storageTimeout:  storageTimeout,
		now:             time.Now,
	}
}
