package middleware

import (
	"errors"

	"codmsocial-backend/internal/domain"
	"codmsocial-backend/internal/pkg/constants"
	"codmsocial-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const membershipLocal = "membership"

// LoadMembership resolves the caller's accepted membership in :orgID and
// stores it in Locals. Callers without one get 403.
func LoadMembership(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		if userID == "" {
			return response.Unauthorized(c, "Unauthorized")
		}
		orgID, err := uuid.Parse(c.Params("orgID"))
		if err != nil {
			return response.Error(c, "Invalid organization id", fiber.StatusBadRequest, nil)
		}
		var m domain.Membership
		err = db.WithContext(c.UserContext()).
			Where("org_id = ? AND user_id = ? AND status = ?", orgID, userID, constants.StatusAccepted).
			First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, "You are not a member of this organization", fiber.StatusForbidden, nil)
		}
		if err != nil {
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
		c.Locals(membershipLocal, &m)
		return c.Next()
	}
}

// GetMembership returns the membership stored by LoadMembership, or nil.
func GetMembership(c *fiber.Ctx) *domain.Membership {
	m, _ := c.Locals(membershipLocal).(*domain.Membership)
	return m
}

// ActorRole returns the caller's role in the current organization, or "".
func ActorRole(c *fiber.Ctx) constants.Role {
	if m := GetMembership(c); m != nil {
		return m.Role
	}
	return ""
}
