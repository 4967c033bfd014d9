package identity

import "fmt"

// Role is the enumerated role taxonomy. Historic tokens and rows used ad hoc
// strings per module; everything funnels through ParseRole now.
type Role string

const (
	RoleSuperAdmin   Role = "SuperAdmin"
	RoleQualityAdmin Role = "AdminCalidad"
	RoleSupervisor   Role = "Supervisor"
	RoleAuditor      Role = "Auditor"
	RoleOperator     Role = "Operador"
)

// legacy "Admin" tokens predate the split into SuperAdmin/AdminCalidad and
// always belonged to plant-wide administrators.
var legacyRoles = map[string]Role{
	"Admin": RoleSuperAdmin,
}

var validRoles = map[Role]struct{}{
	RoleSuperAdmin:   {},
	RoleQualityAdmin: {},
	RoleSupervisor:   {},
	RoleAuditor:      {},
	RoleOperator:     {},
}

// ParseRole validates a raw role string, migrating legacy spellings.
// Comparison is case-sensitive: an unknown casing is an unknown role.
func ParseRole(raw string) (Role, error) {
	if migrated, ok := legacyRoles[raw]; ok {
		return migrated, nil
	}
	role := Role(raw)
	if _, ok := validRoles[role]; !ok {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}

// Permission names a capability a route requires. Routes declare permissions,
// not raw role lists, so membership lives in one place.
type Permission string

const (
	CanManageUsers   Permission = "manage_users"
	CanManageQuality Permission = "manage_quality"
	CanViewAllForms  Permission = "view_all_forms"
	CanSubmitForms   Permission = "submit_forms"
)

var permissionRoles = map[Permission][]Role{
	CanManageUsers:   {RoleSuperAdmin},
	CanManageQuality: {RoleSuperAdmin, RoleQualityAdmin},
	CanViewAllForms:  {RoleSuperAdmin, RoleQualityAdmin, RoleAuditor},
	CanSubmitForms:   {RoleSuperAdmin, RoleQualityAdmin, RoleSupervisor, RoleAuditor, RoleOperator},
}

// Allows reports whether the role holds the permission.
func (r Role) Allows(p Permission) bool {
	for _, allowed := range permissionRoles[p] {
		if r == allowed {
			return true
		}
	}
	return false
}
