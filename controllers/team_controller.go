package controller

import (
	"time"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"startupops/models"
	"startupops/utils"
	"startupops/worker"
)

type TeamController struct {
	DB       *gorm.DB
	Logger   *logrus.Logger
	Notifier *worker.Notifier
}

func NewTeamController(db *gorm.DB, logger *logrus.Logger, notifier *worker.Notifier) *TeamController {
	return &TeamController{
		DB:       db,
		Logger:   logger,
		Notifier: notifier,
	}
}

type AddMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// AddMember puts a team-role user on the founder's startup. The team
// headcount gate runs against the startup-level plan after lazy expiry.
func (tc *TeamController) AddMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	if err := checkmail.ValidateFormat(req.Email); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", nil)
	}

	var startup models.Startup
	if err := tc.DB.Where("founder_id = ?", user.ID).First(&startup).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Create your startup first", nil)
	}

	var member models.User
	if err := tc.DB.Where("email = ?", req.Email).First(&member).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}
	if member.Role != models.RoleTeam {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only team-role users can join a startup", nil)
	}
	if member.StartupID != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "User already belongs to a startup", nil)
	}

	if err := utils.ResolveStartupPlan(tc.DB, &startup, time.Now()); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve subscription state", err)
	}
	limits, ok := models.LimitsFor(startup.PlanName)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown plan", nil)
	}

	var teamCount int64
	if err := tc.DB.Model(&models.User{}).Where("startup_id = ?", startup.ID).Count(&teamCount).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count team members", err)
	}
	if err := utils.CheckHeadcount("team member", limits.Team, teamCount); err != nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, err.Error(), nil)
	}

	if err := tc.DB.Model(&member).Update("startup_id", startup.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add team member", err)
	}

	tc.Notifier.Enqueue(worker.Notification{
		Kind:        worker.NotifyTeamWelcome,
		To:          member.Email,
		StartupName: startup.Name,
	})

	tc.Logger.WithFields(logrus.Fields{
		"startup_id": startup.ID,
		"member_id":  member.ID,
	}).Info("team member added")

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(member))
}

// RemoveMember detaches a member from the founder's startup. The founder
// cannot be removed.
func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	memberID := utils.ParseUint(c.Params("userId"))

	var startup models.Startup
	if err := tc.DB.Where("founder_id = ?", user.ID).First(&startup).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Create your startup first", nil)
	}

	var member models.User
	if err := tc.DB.First(&member, memberID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}
	if member.StartupID == nil || *member.StartupID != startup.ID {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User is not on your team", nil)
	}
	if member.ID == startup.FounderID {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "The founder cannot leave their own startup", nil)
	}

	if err := tc.DB.Model(&member).Update("startup_id", nil).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove team member", err)
	}

	return c.JSON(fiber.Map{
		"message": "Team member removed",
	})
}

// ListTeam returns the caller's teammates. Visible to every member.
func (tc *TeamController) ListTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if user.StartupID == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "You are not part of a startup", nil)
	}

	var team []models.User
	if err := tc.DB.Where("startup_id = ?", *user.StartupID).Order("created_at ASC").Find(&team).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load team", err)
	}

	return c.JSON(utils.SuccessResponse(team))
}
