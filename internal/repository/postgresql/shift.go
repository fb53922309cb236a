package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fichado-app/fichado-backend-go/internal/domain/attendance"
	"github.com/fichado-app/fichado-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type shiftLedger struct {
	db *database.DB
}

const shiftColumns = `
	id, employee_id, to_char(date, 'YYYY-MM-DD'),
	clock_in, clock_out,
	clock_in_latitude, clock_in_longitude,
	clock_out_latitude, clock_out_longitude,
	method, notes, created_at, updated_at
`

func scanShift(row pgx.Row) (attendance.ShiftRecord, error) {
	var s attendance.ShiftRecord
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.Date,
		&s.ClockIn, &s.ClockOut,
		&s.ClockInLatitude, &s.ClockInLongitude,
		&s.ClockOutLatitude, &s.ClockOutLongitude,
		&s.Method, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// Open implements attendance.ShiftLedger. The partial unique index
// shifts_one_open_per_day closes the check-then-insert race: a losing
// concurrent insert fails atomically and is surfaced as ErrShiftAlreadyOpen.
func (l *shiftLedger) Open(ctx context.Context, record attendance.ShiftRecord) (attendance.ShiftRecord, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		INSERT INTO shifts (
			employee_id, date, clock_in,
			clock_in_latitude, clock_in_longitude,
			method, notes
		) VALUES (
			$1, $2::date, $3, $4, $5, $6, $7
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.EmployeeID,
		record.Date,
		record.ClockIn,
		record.ClockInLatitude,
		record.ClockInLongitude,
		record.Method,
		record.Notes,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return attendance.ShiftRecord{}, attendance.ErrShiftAlreadyOpen
		}
		return attendance.ShiftRecord{}, fmt.Errorf("failed to open shift: %w", err)
	}

	return record, nil
}

// FindOpen implements attendance.ShiftLedger. Most recent clock-in wins so
// callers never select an arbitrary row if a past race left duplicates.
func (l *shiftLedger) FindOpen(ctx context.Context, employeeID, date string) (*attendance.ShiftRecord, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE employee_id = $1
		  AND date = $2::date
		  AND clock_out IS NULL
		ORDER BY clock_in DESC
		LIMIT 1
	`

	s, err := scanShift(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no open shift
		}
		return nil, fmt.Errorf("failed to find open shift: %w", err)
	}

	return &s, nil
}

// Close implements attendance.ShiftLedger. The clock_out IS NULL guard makes
// the mutation exactly-once: closing an already-closed shift affects zero
// rows and surfaces as ErrNoOpenShift, never a corrupted record.
func (l *shiftLedger) Close(ctx context.Context, shiftID string, closure attendance.ShiftClosure) (attendance.ShiftRecord, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		UPDATE shifts
		SET clock_out = $2,
			clock_out_latitude = $3,
			clock_out_longitude = $4,
			notes = CASE WHEN $5 = '' THEN notes ELSE $5 END,
			updated_at = now()
		WHERE id = $1
		  AND clock_out IS NULL
		RETURNING ` + shiftColumns + `
	`

	s, err := scanShift(q.QueryRow(ctx, query,
		shiftID,
		closure.ClockOut,
		closure.Latitude,
		closure.Longitude,
		closure.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ShiftRecord{}, attendance.ErrNoOpenShift
		}
		return attendance.ShiftRecord{}, fmt.Errorf("failed to close shift: %w", err)
	}

	return s, nil
}

// ListForEmployee implements attendance.ShiftLedger. Count and page run in
// one transaction so the total matches the rows returned.
func (l *shiftLedger) ListForEmployee(ctx context.Context, employeeID string, filter attendance.ShiftFilter) ([]attendance.ShiftRecord, int64, error) {
	var shifts []attendance.ShiftRecord
	var total int64

	err := WithTransaction(ctx, l.db, func(tx pgx.Tx) error {
		var txErr error
		shifts, total, txErr = l.listForEmployee(ContextWithTx(ctx, tx), employeeID, filter)
		return txErr
	})
	if err != nil {
		return nil, 0, err
	}

	return shifts, total, nil
}

func (l *shiftLedger) listForEmployee(ctx context.Context, employeeID string, filter attendance.ShiftFilter) ([]attendance.ShiftRecord, int64, error) {
	q := GetQuerier(ctx, l.db)

	baseWhere := "employee_id = $1"
	args := []interface{}{employeeID}
	argIdx := 2

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND date >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND date <= $%d::date", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM shifts WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count shifts: %w", err)
	}

	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM shifts
		WHERE %s
		ORDER BY date %s, clock_in %s
		LIMIT $%d OFFSET $%d
	`, shiftColumns, baseWhere, sortOrder, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []attendance.ShiftRecord
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}

	return shifts, total, nil
}

func NewShiftLedger(db *database.DB) attendance.ShiftLedger {
	return &shiftLedger{db: db}
}
