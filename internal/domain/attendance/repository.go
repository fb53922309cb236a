package attendance

import "context"

// ShiftLedger is the persisted sequence of attendance records per employee
// per calendar day. Implementations must enforce "at most one open shift per
// (employee, date)" at the instant of the durable write, not merely at read
// time: the postgres ledger relies on a partial unique index, the in-memory
// ledger on a mutex around check-and-insert.
type ShiftLedger interface {
	// Open inserts a new open shift. Returns ErrShiftAlreadyOpen when an
	// open record for the same employee and date already exists.
	Open(ctx context.Context, record ShiftRecord) (ShiftRecord, error)

	// FindOpen returns the employee's open shift for the given date, or nil.
	// If a past race ever left multiple candidates, the most recent ClockIn
	// wins; callers never receive an arbitrary row.
	FindOpen(ctx context.Context, employeeID, date string) (*ShiftRecord, error)

	// Close stamps clock-out data onto an open shift exactly once. Returns
	// ErrNoOpenShift when the record is already closed or does not exist.
	Close(ctx context.Context, shiftID string, closure ShiftClosure) (ShiftRecord, error)

	// ListForEmployee returns shifts most recent first with the total count
	// for pagination. Aggregates over the window are derived by the caller.
	ListForEmployee(ctx context.Context, employeeID string, filter ShiftFilter) ([]ShiftRecord, int64, error)
}
