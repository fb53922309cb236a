package database

import "errors"

// ErrStorageTimeout marks a transient storage failure the caller may retry.
// Services map context.DeadlineExceeded from storage calls onto this so no
// request ever hangs on the pool.
var ErrStorageTimeout = errors.New("storage operation timed out")
