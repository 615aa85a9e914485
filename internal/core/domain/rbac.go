package domain

// Role is a user's job function; permissions derive from it statically.
type Role string

const (
	RoleAdmin            Role = "ADMIN"
	RoleFinanceManager   Role = "FINANCE_MANAGER"
	RoleFinanceExecutive Role = "FINANCE_EXECUTIVE"
	RoleViewer           Role = "VIEWER"
)

// Permission tags gate finance operations.
type Permission string

const (
	PermFinanceRead    Permission = "finance:read"
	PermFinanceWrite   Permission = "finance:write"
	PermFinanceApprove Permission = "finance:approve"
	PermFinanceAdmin   Permission = "finance:admin"
)

// rolePermissions is the static role -> permission mapping. It is read-only
// after process start; there is no dynamic mutation path.
var rolePermissions = map[Role]map[Permission]struct{}{
	RoleAdmin: {
		PermFinanceRead:    {},
		PermFinanceWrite:   {},
		PermFinanceApprove: {},
		PermFinanceAdmin:   {},
	},
	RoleFinanceManager: {
		PermFinanceRead:    {},
		PermFinanceWrite:   {},
		PermFinanceApprove: {},
	},
	RoleFinanceExecutive: {
		PermFinanceRead:  {},
		PermFinanceWrite: {},
	},
	RoleViewer: {
		PermFinanceRead: {},
	},
}

// HasPermission reports whether the role carries the given permission tag.
// Pure function so authorization is unit-testable without a database.
func HasPermission(role Role, perm Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = perms[perm]
	return ok
}

// ValidRole reports whether the role is one of the known roles.
func ValidRole(role Role) bool {
	_, ok := rolePermissions[role]
	return ok
}
