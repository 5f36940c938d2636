package middleware

import (
	"codmsocial-backend/internal/application/policies/roles"
	"codmsocial-backend/internal/pkg/constants"
	"codmsocial-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthorizePermission checks the caller's organization role, loaded by
// LoadMembership, against the role permission table.
// Unknown permission -> 500 "Permission configuration error"; role not allowed -> 403.
func AuthorizePermission(permission constants.Permission) fiber.Handler {
	known := false
	for _, p := range constants.AllPermissions {
		if p == permission {
			known = true
		}
	}
	return func(c *fiber.Ctx) error {
		if !known {
			return response.Error(c, "Permission configuration error", fiber.StatusInternalServerError, nil)
		}
		m := GetMembership(c)
		if m == nil {
			return response.Error(c, "Authorization error", fiber.StatusInternalServerError, nil)
		}
		if !roles.GetRolePermissions(m.Role).Has(permission) {
			return response.Error(c, "User is Forbidden from performing this action", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}
