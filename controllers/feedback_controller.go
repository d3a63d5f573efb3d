package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"startupops/models"
	"startupops/utils"
)

type FeedbackController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewFeedbackController(db *gorm.DB, logger *logrus.Logger) *FeedbackController {
	return &FeedbackController{
		DB:     db,
		Logger: logger,
	}
}

type SubmitFeedbackRequest struct {
	StartupID uint   `json:"startup_id" validate:"required"`
	Message   string `json:"message" validate:"required,max=5000"`
	Rating    int    `json:"rating" validate:"required,gte=1,lte=5"`
}

// SubmitFeedback records feedback on a startup. Any authenticated user may
// submit, typically investors and mentors after a dashboard review.
func (fc *FeedbackController) SubmitFeedback(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req SubmitFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var startup models.Startup
	if err := fc.DB.First(&startup, req.StartupID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Startup not found", nil)
	}

	feedback := models.Feedback{
		StartupID: startup.ID,
		UserID:    user.ID,
		Message:   req.Message,
		Rating:    req.Rating,
	}

	if err := fc.DB.Create(&feedback).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to submit feedback", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(feedback))
}

// GetFeedback lists feedback on the caller's startup, newest first.
func (fc *FeedbackController) GetFeedback(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if user.StartupID == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "You are not part of a startup", nil)
	}

	var feedback []models.Feedback
	if err := fc.DB.Where("startup_id = ?", *user.StartupID).Order("created_at DESC").Find(&feedback).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load feedback", err)
	}

	return c.JSON(utils.SuccessResponse(feedback))
}

// DeleteFeedback removes one feedback entry. Founder of the startup only.
func (fc *FeedbackController) DeleteFeedback(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	feedbackID := utils.ParseUint(c.Params("id"))

	var feedback models.Feedback
	if err := fc.DB.First(&feedback, feedbackID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Feedback not found", nil)
	}

	var startup models.Startup
	if err := fc.DB.First(&startup, feedback.StartupID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Startup not found", nil)
	}
	if startup.FounderID != user.ID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only the founder can delete feedback", nil)
	}

	if err := fc.DB.Delete(&feedback).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete feedback", err)
	}

	return c.JSON(fiber.Map{
		"message": "Feedback deleted",
	})
}
