package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"startupops/models"
	"startupops/utils"
)

// DashboardController aggregates progress stats for founders and their
// teams.
type DashboardController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewDashboardController(db *gorm.DB, logger *logrus.Logger) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logger,
	}
}

// GetStats summarizes the caller's startup: task counts and completion
// rate, milestones achieved, feedback volume and average rating, team size.
// The optional window query parameter (week or month) restricts task counts
// to recent activity; the default is all time.
func (dc *DashboardController) GetStats(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if user.StartupID == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "You are not part of a startup", nil)
	}
	startupID := *user.StartupID

	var since *time.Time
	switch c.Query("window") {
	case "":
	case "week":
		since = utils.Pointer(time.Now().AddDate(0, 0, -7))
	case "month":
		since = utils.Pointer(time.Now().AddDate(0, -1, 0))
	default:
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Window must be week or month", nil)
	}

	taskQuery := dc.DB.Model(&models.Task{}).Where("startup_id = ?", startupID)
	doneQuery := dc.DB.Model(&models.Task{}).Where("startup_id = ? AND status = ?", startupID, models.TaskDone)
	if since != nil {
		taskQuery = taskQuery.Where("created_at >= ?", *since)
		doneQuery = doneQuery.Where("created_at >= ?", *since)
	}

	var totalTasks, doneTasks int64
	if err := taskQuery.Count(&totalTasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count tasks", err)
	}
	if err := doneQuery.Count(&doneTasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count tasks", err)
	}

	completionRate := 0.0
	if totalTasks > 0 {
		completionRate = float64(doneTasks) / float64(totalTasks)
	}

	var totalMilestones, achievedMilestones int64
	if err := dc.DB.Model(&models.Milestone{}).Where("startup_id = ?", startupID).Count(&totalMilestones).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count milestones", err)
	}
	if err := dc.DB.Model(&models.Milestone{}).Where("startup_id = ? AND achieved_at IS NOT NULL", startupID).Count(&achievedMilestones).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count milestones", err)
	}

	var feedbackCount int64
	if err := dc.DB.Model(&models.Feedback{}).Where("startup_id = ?", startupID).Count(&feedbackCount).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count feedback", err)
	}

	var avgRating float64
	if feedbackCount > 0 {
		row := dc.DB.Model(&models.Feedback{}).Where("startup_id = ?", startupID).Select("AVG(rating)").Row()
		if err := row.Scan(&avgRating); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to average ratings", err)
		}
	}

	var teamSize int64
	if err := dc.DB.Model(&models.User{}).Where("startup_id = ?", startupID).Count(&teamSize).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count team members", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"tasks": fiber.Map{
			"total":           totalTasks,
			"done":            doneTasks,
			"completion_rate": completionRate,
		},
		"milestones": fiber.Map{
			"total":    totalMilestones,
			"achieved": achievedMilestones,
		},
		"feedback": fiber.Map{
			"count":          feedbackCount,
			"average_rating": avgRating,
		},
		"team_size": teamSize,
	}))
}
