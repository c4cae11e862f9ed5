package auth

import "context"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	PermHistoryRead  = "salary.history.read"
	PermHistoryWrite = "salary.history.write"
	PermAdminJobs    = "admin.jobs"
	PermAuditRead    = "admin.audit.read"
)

var RolePermissions = map[string][]string{
	RoleUser: {
		PermHistoryRead,
		PermHistoryWrite,
	},
	RoleAdmin: {
		PermHistoryRead,
		PermHistoryWrite,
		PermAdminJobs,
		PermAuditRead,
	},
}

func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

func HasPermission(role, permission string) bool {
	for _, candidate := range RolePermissions[role] {
		if candidate == permission {
			return true
		}
	}
	return false
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	return HasPermission(role, permission), nil
}
