package user

import "errors"

var (
	ErrSupervisorAccessRequired = errors.New("supervisor or admin access required")
	ErrAdminAccessRequired      = errors.New("admin access required")
	ErrInvalidToken             = errors.New("invalid or missing token")
)
