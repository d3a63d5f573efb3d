package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"startupops/models"
	"startupops/utils"
)

type TaskController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewTaskController(db *gorm.DB, logger *logrus.Logger) *TaskController {
	return &TaskController{
		DB:     db,
		Logger: logger,
	}
}

type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=300"`
	Description string     `json:"description" validate:"omitempty,max=5000"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=300"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Status      *string    `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	DueDate     *time.Time `json:"due_date"`
}

// CreateTask adds a task to the caller's startup. Free-plan users are
// capped at ten tasks of their own creation; the caller's subscription is
// resolved for expiry before the quota check.
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if user.StartupID == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "You are not part of a startup", nil)
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if err := utils.ResolveUserPlan(tc.DB, user, time.Now()); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve subscription state", err)
	}
	if err := utils.CheckTaskQuota(tc.DB, user); err != nil {
		if errors.Is(err, utils.ErrTaskQuotaExceeded) {
			return utils.ErrorResponse(c, fiber.StatusForbidden, err.Error(), nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check task quota", err)
	}

	task := models.Task{
		StartupID:   *user.StartupID,
		CreatedByID: user.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskTodo,
		DueDate:     req.DueDate,
	}

	if err := tc.DB.Create(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create task", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(task))
}

// GetTasks lists the startup's tasks, newest first.
func (tc *TaskController) GetTasks(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if user.StartupID == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "You are not part of a startup", nil)
	}

	var tasks []models.Task
	if err := tc.DB.Where("startup_id = ?", *user.StartupID).Order("created_at DESC").Find(&tasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load tasks", err)
	}

	return c.JSON(utils.SuccessResponse(tasks))
}

// UpdateTask edits a task. Any member of the owning startup may edit;
// members of other startups are denied regardless of token validity.
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("id"))

	var task models.Task
	if err := tc.DB.First(&task, taskID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}
	if user.StartupID == nil || *user.StartupID != task.StartupID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You do not have access to this task", nil)
	}

	var req UpdateTaskRequest
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
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}

	if len(updates) > 0 {
		if err := tc.DB.Model(&task).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update task", err)
		}
	}

	return c.JSON(utils.SuccessResponse(task))
}

// DeleteTask removes a task. Same ownership rule as updates.
func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID := utils.ParseUint(c.Params("id"))

	var task models.Task
	if err := tc.DB.First(&task, taskID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}
	if user.StartupID == nil || *user.StartupID != task.StartupID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You do not have access to this task", nil)
	}

	if err := tc.DB.Delete(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete task", err)
	}

	return c.JSON(fiber.Map{
		"message": "Task deleted",
	})
}
