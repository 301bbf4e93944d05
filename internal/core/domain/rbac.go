package domain

// Role defines a named set of permissions within a tenant.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleAgent    Role = "agent"
	RoleHR       Role = "hr"
	RoleCustomer Role = "customer"
)

// rolePermissions is the static role to permission expansion used when tokens
// are issued. Permissions embedded in a token stay valid until the token
// expires; the short access-token lifetime bounds the staleness window.
var rolePermissions = map[Role][]string{
	RoleAdmin: {
		"users:read", "users:write",
		"bookings:read", "bookings:write",
		"content:read", "content:write",
		"hr:read", "hr:write",
		"settings:read", "settings:write",
		"tenants:manage",
	},
	RoleManager: {
		"users:read",
		"bookings:read", "bookings:write",
		"content:read", "content:write",
		"settings:read",
	},
	RoleAgent: {
		"bookings:read", "bookings:write",
		"content:read",
	},
	RoleHR: {
		"users:read",
		"hr:read", "hr:write",
	},
	RoleCustomer: {
		"bookings:read",
	},
}

// PermissionsForRole expands a role into its permission list. Unknown roles
// expand to nothing, which fails closed at the permission gate.
func PermissionsForRole(role Role) []string {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}

	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether the permission list contains the required
// permission.
func HasPermission(granted []string, required string) bool {
	for _, p := range granted {
		if p == required {
			return true
		}
	}
	return false
}
