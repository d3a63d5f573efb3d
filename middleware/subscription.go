package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"startupops/config"
	"startupops/models"
	"startupops/utils"
)

// RequireActivePro gates pro-only features on the caller's user-level
// subscription. Lazy expiry runs first, so a lapsed pro plan is demoted
// here rather than by any background job.
func RequireActivePro() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals("user").(*models.User)

		if err := utils.ResolveUserPlan(config.DB, user, time.Now()); err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,
				"error":   err,
			}).Error("failed to resolve subscription state")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to resolve subscription state",
			})
		}

		if !user.HasActivePro() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "An active pro subscription is required for this feature",
			})
		}
		return c.Next()
	}
}
