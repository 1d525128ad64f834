package auth

// Permission represents a named capability in the system.
type Permission string

// Permission constants.
const (
	PermFleetRead  Permission = "fleet:read"
	PermFleetWrite Permission = "fleet:write"
)

// rolePermissions maps each role to its granted permissions.
var rolePermissions = map[Role][]Permission{
	RoleViewer:   {PermFleetRead},
	RoleOperator: {PermFleetRead, PermFleetWrite},
	RoleAdmin:    {PermFleetRead, PermFleetWrite},
}

// HasPermission returns true if the given role has the specified permission.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsForRole returns a copy of the permissions granted to role.
func PermissionsForRole(role Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
