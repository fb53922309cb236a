package user

type Role string

const (
	RoleAdmin      Role = "admin"      // Full access, can configure the work site
	RoleSupervisor Role = "supervisor" // Can configure the work site and review attendance
	RoleEmployee   Role = "employee"   // Can clock in/out and see own history
)

// Identity is the authenticated caller as supplied by the JWT claims.
// Credential verification happens upstream; this service trusts the claims.
type Identity struct {
	EmployeeID string
	Role       Role
}

// CanConfigureGeofence checks if the role may change the work-site geofence.
func (r Role) CanConfigureGeofence() bool {
	return r == RoleAdmin || r == RoleSupervisor
}

// CanViewAllAttendance checks if the role may list other employees' shifts.
func (r Role) CanViewAllAttendance() bool {
	return r == RoleAdmin || r == RoleSupervisor
}
