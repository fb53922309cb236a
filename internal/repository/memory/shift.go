// Package memory holds mutex-serialized in-memory implementations of the
// storage interfaces. They back the service test suites and demonstrate the
// per-employee critical-section variant of the open-shift invariant.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fichado-app/fichado-backend-go/internal/domain/attendance"
	"github.com/google/uuid"
)

type ShiftLedger struct {
	mu     sync.Mutex
	shifts map[string]*attendance.ShiftRecord // by id
}

func NewShiftLedger() *ShiftLedger {
	return &ShiftLedger{shifts: make(map[string]*attendance.ShiftRecord)}
}

// Open holds the mutex across check-and-insert, so the "at most one open
// shift per (employee, date)" invariant cannot be violated by concurrent
// callers — the in-memory analogue of the postgres partial unique index.
func (l *ShiftLedger) Open(ctx context.Context, record attendance.ShiftRecord) (attendance.ShiftRecord, error) {
	if err := ctx.Err(); err != nil {
		return attendance.ShiftRecord{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, s := range l.shifts {
		if s.EmployeeID == record.EmployeeID && s.Date == record.Date && s.ClockOut == nil {
			return attendance.ShiftRecord{}, attendance.ErrShiftAlreadyOpen
		}
	}

	now := time.Now()
	record.ID = uuid.NewString()
	record.CreatedAt = now
	record.UpdatedAt = now

	stored := record
	l.shifts[record.ID] = &stored
	return record, nil
}

func (l *ShiftLedger) FindOpen(ctx context.Context, employeeID, date string) (*attendance.ShiftRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var open *attendance.ShiftRecord
	for _, s := range l.shifts {
		if s.EmployeeID != employeeID || s.Date != date || s.ClockOut != nil {
			continue
		}
		// Deterministic tie-break: most recent clock-in wins.
		if open == nil || s.ClockIn.After(open.ClockIn) {
			open = s
		}
	}
	if open == nil {
		return nil, nil
	}

	copied := *open
	return &copied, nil
}

func (l *ShiftLedger) Close(ctx context.Context, shiftID string, closure attendance.ShiftClosure) (attendance.ShiftRecord, error) {
	if err := ctx.Err(); err != nil {
		return attendance.ShiftRecord{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.shifts[shiftID]
	if !ok || s.ClockOut != nil {
		return attendance.ShiftRecord{}, attendance.ErrNoOpenShift
	}

	out := closure.ClockOut
	s.ClockOut = &out
	s.ClockOutLatitude = closure.Latitude
	s.ClockOutLongitude = closure.Longitude
	if closure.Notes != "" {
		s.Notes = closure.Notes
	}
	s.UpdatedAt = time.Now()

	copied := *s
	return copied, nil
}

func (l *ShiftLedger) ListForEmployee(ctx context.Context, employeeID string, filter attendance.ShiftFilter) ([]attendance.ShiftRecord, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var matched []attendance.ShiftRecord
	for _, s := range l.shifts {
		if s.EmployeeID != employeeID {
			continue
		}
		if filter.StartDate != nil && *filter.StartDate != "" && s.Date < *filter.StartDate {
			continue
		}
		if filter.EndDate != nil && *filter.EndDate != "" && s.Date > *filter.EndDate {
			continue
		}
		matched = append(matched, *s)
	}

	asc := filter.SortOrder == "asc"
	sort.Slice(matched, func(i, j int) bool {
		if asc {
			return matched[i].ClockIn.Before(matched[j].ClockIn)
		}
		return matched[i].ClockIn.After(matched[j].ClockIn)
	})

	total := int64(len(matched))

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start > len(matched) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], total, nil
}

// OpenCount reports open shifts for an employee/date; test helper.
func (l *ShiftLedger) OpenCount(employeeID, date string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, s := range l.shifts {
		if s.EmployeeID == employeeID && s.Date == date && s.ClockOut == nil {
			n++
		}
	}
	return n
}
