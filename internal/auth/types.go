package auth

import "errors"

// Role is the authorisation tier carried in a token.
type Role string

// Roles.
const (
	// RoleViewer may read gateways, devices and audit trails.
	RoleViewer Role = "viewer"

	// RoleOperator may also create, update, attach and delete.
	RoleOperator Role = "operator"

	// RoleAdmin has every permission.
	RoleAdmin Role = "admin"
)

// ValidRoles is the set of roles a token may carry.
var ValidRoles = []Role{RoleViewer, RoleOperator, RoleAdmin}

// IsValidRole returns true if r is a known role.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Auth errors.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrForbidden    = errors.New("insufficient permissions")
)
