package rbac

// Role constants
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Permission constants
const (
	PermManageContacts  = "manage_contacts"
	PermManageContent   = "manage_content" // campaigns, newsletters, templates
	PermManageSchedules = "manage_schedules"
	PermRunPipeline     = "run_pipeline" // due sweep and queue processing on demand
	PermViewPipeline    = "view_pipeline"
	PermManageUsers     = "manage_users"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermManageContacts, PermManageContent, PermManageSchedules,
		PermRunPipeline, PermViewPipeline, PermManageUsers,
	},
	RoleUser: {
		PermManageContacts, PermManageContent, PermManageSchedules,
		PermViewPipeline,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

func IsValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
