package middleware

import (
	"github.com/gofiber/fiber/v2"

	"startupops/models"
)

// RequireRole rejects callers whose role is not in the allowed set. Must
// run after Protected.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		user := c.Locals("user").(*models.User)
		if _, ok := allowed[user.Role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Your role does not permit this action",
			})
		}
		return c.Next()
	}
}
