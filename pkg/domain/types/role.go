package types

import "fmt"

// Role represents the organizational role of a user
type Role string

const (
	RoleComplianceAdmin  Role = "compliance_admin"
	RoleComplianceViewer Role = "compliance_viewer"
	RoleDepartmentUser   Role = "department_user"
	RoleChiefManager     Role = "department_chief_manager"
	RoleDGM              Role = "department_dgm"
)

// AllRoles returns all valid roles
func AllRoles() []Role {
	return []Role{
		RoleComplianceAdmin,
		RoleComplianceViewer,
		RoleDepartmentUser,
		RoleChiefManager,
		RoleDGM,
	}
}

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleComplianceAdmin,
		RoleComplianceViewer,
		RoleDepartmentUser,
		RoleChiefManager,
		RoleDGM:
		return true
	default:
		return false
	}
}

// IsDepartmentScoped reports whether the role acts only within its own
// department. Compliance admin and viewer see all departments.
func (r Role) IsDepartmentScoped() bool {
	switch r {
	case RoleDepartmentUser, RoleChiefManager, RoleDGM:
		return true
	default:
		return false
	}
}

// IsApprover reports whether the role can approve or send back tasks
// awaiting department approval.
func (r Role) IsApprover() bool {
	return r == RoleChiefManager || r == RoleDGM
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return role, nil
}
