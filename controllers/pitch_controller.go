package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"startupops/models"
	"startupops/utils"
)

// PitchController generates pitch material from a startup's profile via the
// configured language model. Routes using it sit behind the pro-plan gate
// and the per-user rate limiter.
type PitchController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
	AI     *genai.Client
}

func NewPitchController(db *gorm.DB, logger *logrus.Logger, ai *genai.Client) *PitchController {
	return &PitchController{
		DB:     db,
		Logger: logger,
		AI:     ai,
	}
}

type GeneratePitchRequest struct {
	Kind string `json:"kind" validate:"required,oneof=elevator deck_outline one_liner"`
}

// GeneratePitch builds a prompt from the caller's startup and runs one
// generation. Upstream rate limits are retried inside the generator; any
// other upstream failure surfaces as a 500 with the upstream message.
func (pc *PitchController) GeneratePitch(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if user.StartupID == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "You are not part of a startup", nil)
	}

	var req GeneratePitchRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	if !utils.ValidPitchKind(req.Kind) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown pitch kind", nil)
	}

	var startup models.Startup
	if err := pc.DB.First(&startup, *user.StartupID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Startup not found", nil)
	}

	prompt := utils.BuildPitchPrompt(&startup, req.Kind)
	pitch, err := utils.GeneratePitch(c.Context(), pc.AI, prompt)
	if err != nil {
		pc.Logger.WithFields(logrus.Fields{
			"startup_id": startup.ID,
			"kind":       req.Kind,
			"error":      err,
		}).Error("pitch generation failed")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Pitch generation failed", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"kind":  req.Kind,
		"pitch": pitch,
	}))
}
