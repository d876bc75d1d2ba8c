package web

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/dialvox/ivrflow/pkg/auth"
)

// Identity headers set by the fronting auth proxy. Authentication itself
// happens upstream; these are trusted inputs to the permission checks.
const (
	HeaderRole      = "X-Auth-Role"
	HeaderSuperuser = "X-Auth-Superuser"
)

// IdentityFromRequest builds the caller identity from the proxy headers.
// An unrecognized or absent role carries no permissions.
func IdentityFromRequest(c fiber.Ctx) auth.Identity {
	identity := auth.Identity{}

	if role, ok := auth.ParseRole(c.Get(HeaderRole)); ok {
		identity.Role = role
	}

	if superuser, err := strconv.ParseBool(c.Get(HeaderSuperuser)); err == nil {
		identity.Superuser = superuser
	}

	return identity
}

// RequirePermission rejects requests whose identity lacks the
// permission. The UI hides gated controls proactively; this middleware
// is the enforcement boundary behind it.
func RequirePermission(permission auth.Permission) fiber.Handler {
	return func(c fiber.Ctx) error {
		if !auth.HasPermission(IdentityFromRequest(c), permission) {
			return forbidden(c, fmt.Sprintf("missing permission %q", permission))
		}

		return c.Next()
	}
}

// GetPermissions returns the calling identity's grants for UI gating.
func (h *APIHandlers) GetPermissions(c fiber.Ctx) error {
	identity := IdentityFromRequest(c)

	grants := auth.Grants(identity)
	if grants == nil {
		grants = []auth.Permission{}
	}

	return c.JSON(PermissionsResponse{
		Role:        string(identity.Role),
		Superuser:   identity.Superuser,
		Permissions: grants,
	})
}
