package auth

// Role is a fixed user category controlling default permission grants.
// The empty string means the caller has no role at all.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// Roles returns every known role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleOperator, RoleViewer}
}

// ParseRole maps a raw string onto a known role. The second return is
// false for anything outside the fixed enumeration, including the
// empty string.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleAdmin, RoleManager, RoleOperator, RoleViewer:
		return Role(raw), true
	default:
		return "", false
	}
}
