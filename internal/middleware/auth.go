package middleware

import (
	"codmsocial-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == "" {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// UserID returns the session user's id, or "" when there is none.
func UserID(c *fiber.Ctx) string {
	return userField(c, "user_id")
}

// UserEmail returns the session user's email, or "".
func UserEmail(c *fiber.Ctx) string {
	return userField(c, "email")
}

func userField(c *fiber.Ctx, key string) string {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
