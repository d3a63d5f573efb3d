package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"startupops/models"
	"startupops/utils"
)

type MilestoneController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewMilestoneController(db *gorm.DB, logger *logrus.Logger) *MilestoneController {
	return &MilestoneController{
		DB:     db,
		Logger: logger,
	}
}

type CreateMilestoneRequest struct {
	Title       string     `json:"title" validate:"required,max=300"`
	Description string     `json:"description" validate:"omitempty,max=5000"`
	TargetDate  *time.Time `json:"target_date"`
}

type UpdateMilestoneRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=300"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	TargetDate  *time.Time `json:"target_date"`
	Achieved    *bool      `json:"achieved"`
}

// CreateMilestone records a milestone for the founder's startup. Founder
// only; team members read but do not mutate milestones.
func (mc *MilestoneController) CreateMilestone(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var startup models.Startup
	if err := mc.DB.Where("founder_id = ?", user.ID).First(&startup).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Create your startup first", nil)
	}

	var req CreateMilestoneRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	milestone := models.Milestone{
		StartupID:   startup.ID,
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  req.TargetDate,
	}

	if err := mc.DB.Create(&milestone).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create milestone", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(milestone))
}

// GetMilestones lists milestones for the caller's startup, soonest target
// first.
func (mc *MilestoneController) GetMilestones(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if user.StartupID == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "You are not part of a startup", nil)
	}

	var milestones []models.Milestone
	if err := mc.DB.Where("startup_id = ?", *user.StartupID).Order("target_date ASC").Find(&milestones).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load milestones", err)
	}

	return c.JSON(utils.SuccessResponse(milestones))
}

// UpdateMilestone edits a milestone, founder only.
func (mc *MilestoneController) UpdateMilestone(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	milestoneID := utils.ParseUint(c.Params("id"))

	var milestone models.Milestone
	if err := mc.DB.First(&milestone, milestoneID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Milestone not found", nil)
	}

	var startup models.Startup
	if err := mc.DB.First(&startup, milestone.StartupID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Startup not found", nil)
	}
	if startup.FounderID != user.ID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only the founder can edit milestones", nil)
	}

	var req UpdateMilestoneRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.TargetDate != nil {
		updates["target_date"] = *req.TargetDate
	}
	if req.Achieved != nil {
		if *req.Achieved {
			updates["achieved_at"] = time.Now()
		} else {
			updates["achieved_at"] = nil
		}
	}

	if len(updates) > 0 {
		if err := mc.DB.Model(&milestone).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update milestone", err)
		}
	}

	return c.JSON(utils.SuccessResponse(milestone))
}

// DeleteMilestone removes a milestone, founder only.
func (mc *MilestoneController) DeleteMilestone(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	milestoneID := utils.ParseUint(c.Params("id"))

	var milestone models.Milestone
	if err := mc.DB.First(&milestone, milestoneID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Milestone not found", nil)
	}

	var startup models.Startup
	if err := mc.DB.First(&startup, milestone.StartupID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Startup not found", nil)
	}
	if startup.FounderID != user.ID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only the founder can delete milestones", nil)
	}

	if err := mc.DB.Delete(&milestone).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete milestone", err)
	}

	return c.JSON(fiber.Map{
		"message": "Milestone deleted",
	})
}
