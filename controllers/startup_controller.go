package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"startupops/models"
	"startupops/utils"
)

type StartupController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewStartupController(db *gorm.DB, logger *logrus.Logger) *StartupController {
	return &StartupController{
		DB:     db,
		Logger: logger,
	}
}

type CreateStartupRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Problem  string `json:"problem" validate:"omitempty,max=5000"`
	Solution string `json:"solution" validate:"omitempty,max=5000"`
	Market   string `json:"market" validate:"omitempty,max=5000"`
	Stage    string `json:"stage" validate:"omitempty,oneof=idea mvp growth"`
}

type UpdateStartupRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Problem  *string `json:"problem" validate:"omitempty,max=5000"`
	Solution *string `json:"solution" validate:"omitempty,max=5000"`
	Market   *string `json:"market" validate:"omitempty,max=5000"`
	Stage    *string `json:"stage" validate:"omitempty,oneof=idea mvp growth"`
}

// CreateStartup registers the founder's startup. A founder owns at most one
// startup; the founder joins their own team on creation.
func (sc *StartupController) CreateStartup(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CreateStartupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var existing models.Startup
	if err := sc.DB.Where("founder_id = ?", user.ID).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "You already have a startup", nil)
	}

	if req.Stage == "" {
		req.Stage = models.StageIdea
	}

	startup := models.Startup{
		Name:      req.Name,
		Problem:   req.Problem,
		Solution:  req.Solution,
		Market:    req.Market,
		Stage:     req.Stage,
		FounderID: user.ID,
		PlanName:  models.PlanFree,
	}

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&startup).Error; err != nil {
			return err
		}
		// Founder is always a team member
		return tx.Model(user).Update("startup_id", startup.ID).Error
	})
	if err != nil {
		sc.Logger.WithFields(logrus.Fields{
			"founder_id": user.ID,
			"error":      err,
		}).Error("failed to create startup")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create startup", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(startup))
}

// GetMyStartup returns the startup the caller belongs to, with its team.
func (sc *StartupController) GetMyStartup(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if user.StartupID == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "You are not part of a startup", nil)
	}

	var startup models.Startup
	if err := sc.DB.First(&startup, *user.StartupID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Startup not found", nil)
	}

	var team []models.User
	if err := sc.DB.Where("startup_id = ?", startup.ID).Find(&team).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load team", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"startup": startup,
		"team":    team,
	}))
}

// UpdateStartup edits the profile. Founder only, and only their own startup.
func (sc *StartupController) UpdateStartup(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	startupID := utils.ParseUint(c.Params("id"))

	var startup models.Startup
	if err := sc.DB.First(&startup, startupID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Startup not found", nil)
	}
	if startup.FounderID != user.ID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only the founder can edit this startup", nil)
	}

	var req UpdateStartupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Problem != nil {
		updates["problem"] = *req.Problem
	}
	if req.Solution != nil {
		updates["solution"] = *req.Solution
	}
	if req.Market != nil {
		updates["market"] = *req.Market
	}
	if req.Stage != nil {
		updates["stage"] = *req.Stage
	}

	if len(updates) > 0 {
		if err := sc.DB.Model(&startup).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update startup", err)
		}
	}

	return c.JSON(utils.SuccessResponse(startup))
}
