// Package auth implements the role based permission decisions that gate
// every mutating dashboard action. The same functions back the HTTP
// middleware and any UI gating so the two boundaries can never drift.
package auth

// Identity is the authenticated caller as seen by permission checks:
// an optional role plus the superuser override flag.
type Identity struct {
	Role      Role `json:"role,omitempty"`
	Superuser bool `json:"superuser"`
}

// Grants returns every permission the identity holds. Superusers hold
// all permissions; an identity without a recognized role holds none.
func Grants(id Identity) []Permission {
	if id.Superuser {
		return AllPermissions()
	}

	granted, ok := rolePermissions[id.Role]
	if !ok {
		return nil
	}

	permissions := make([]Permission, 0, len(granted))

	for _, permission := range AllPermissions() {
		if _, has := granted[permission]; has {
			permissions = append(permissions, permission)
		}
	}

	return permissions
}

// HasPermission reports whether the identity holds the permission.
// Absence of a role or an unknown permission yields false, never an
// error.
func HasPermission(id Identity, permission Permission) bool {
	if id.Superuser {
		return true
	}

	granted, ok := rolePermissions[id.Role]
	if !ok {
		return false
	}

	_, has := granted[permission]

	return has
}

// HasAnyPermission reports whether the identity holds at least one of
// the given permissions. An empty list yields false unless the
// identity is a superuser.
func HasAnyPermission(id Identity, permissions ...Permission) bool {
	if id.Superuser {
		return true
	}

	for _, permission := range permissions {
		if HasPermission(id, permission) {
			return true
		}
	}

	return false
}

// HasAllPermissions reports whether the identity holds every one of
// the given permissions. An empty list is vacuously true.
func HasAllPermissions(id Identity, permissions ...Permission) bool {
	if id.Superuser {
		return true
	}

	for _, permission := range permissions {
		if !HasPermission(id, permission) {
			return false
		}
	}

	return true
}

// HasRole reports whether the identity's role is one of the given
// roles. Superusers match any role query.
func HasRole(id Identity, roles ...Role) bool {
	if id.Superuser {
		return true
	}

	for _, role := range roles {
		if id.Role == role {
			return true
		}
	}

	return false
}
