package controller

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"startupops/config"
	"startupops/models"
	"startupops/utils"
)

// PaymentController handles startup-level plan purchases. The startup
// subscription is what team, investor and mentor headcounts are gated on,
// independent of the founder's own user plan.
type PaymentController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewPaymentController(db *gorm.DB, logger *logrus.Logger) *PaymentController {
	return &PaymentController{
		DB:     db,
		Logger: logger,
	}
}

// CreateStartupOrder opens a gateway order upgrading the founder's startup.
func (pc *PaymentController) CreateStartupOrder(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	limits, ok := models.LimitsFor(req.PlanName)
	if !ok || req.PlanName == models.PlanFree {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown or free plan cannot be purchased", nil)
	}

	var startup models.Startup
	if err := pc.DB.Where("founder_id = ?", user.ID).First(&startup).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Create your startup first", nil)
	}

	receipt := fmt.Sprintf("startup_%d_%d", startup.ID, time.Now().Unix())
	orderID, err := utils.CreateOrder(limits.Price, "INR", receipt, map[string]interface{}{
		"scope":      models.ScopeStartup,
		"startup_id": startup.ID,
		"plan":       req.PlanName,
	})
	if err != nil {
		pc.Logger.WithFields(logrus.Fields{
			"startup_id": startup.ID,
			"plan":       req.PlanName,
			"error":      err,
		}).Error("failed to create gateway order")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create payment order", err)
	}

	tx := models.PaymentTransaction{
		UserID:          user.ID,
		StartupID:       &startup.ID,
		Scope:           models.ScopeStartup,
		PlanName:        req.PlanName,
		Amount:          limits.Price,
		Currency:        "INR",
		Status:          models.PaymentCreated,
		RazorpayOrderID: orderID,
	}
	if err := pc.DB.Create(&tx).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record payment transaction", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"order_id": orderID,
		"amount":   limits.Price,
		"currency": "INR",
		"key_id":   config.AppConfig.RazorpayKeyID,
	}))
}

// VerifyStartupPayment verifies a startup-scope checkout and activates the
// startup's plan on success. Same signature contract as the user flow.
func (pc *PaymentController) VerifyStartupPayment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var tx models.PaymentTransaction
	if err := pc.DB.Where("razorpay_order_id = ?", req.RazorpayOrderID).First(&tx).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Payment transaction not found", nil)
	}
	if tx.UserID != user.ID || tx.Scope != models.ScopeStartup || tx.StartupID == nil {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "This payment does not belong to you", nil)
	}
	if tx.Status != models.PaymentCreated {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "This payment has already been processed", nil)
	}

	var startup models.Startup
	if err := pc.DB.First(&startup, *tx.StartupID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Startup not found", nil)
	}
	if startup.FounderID != user.ID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only the founder can upgrade this startup", nil)
	}

	if !utils.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, config.AppConfig.RazorpayKeySecret) {
		pc.Logger.WithFields(logrus.Fields{
			"startup_id": startup.ID,
			"order_id":   req.RazorpayOrderID,
		}).Warn("payment signature verification failed")
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Payment signature verification failed", nil)
	}

	now := time.Now()
	err := pc.DB.Transaction(func(dtx *gorm.DB) error {
		if err := dtx.Model(&tx).Updates(map[string]interface{}{
			"status":              models.PaymentPaid,
			"razorpay_payment_id": req.RazorpayPaymentID,
			"razorpay_signature":  req.RazorpaySignature,
		}).Error; err != nil {
			return err
		}
		return utils.ActivateStartupPlan(dtx, &startup, tx.PlanName, now)
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to activate subscription", err)
	}

	pc.Logger.WithFields(logrus.Fields{
		"startup_id": startup.ID,
		"plan":       tx.PlanName,
	}).Info("startup subscription activated")

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"plan_name":           startup.PlanName,
		"subscription_status": startup.SubscriptionStatus,
		"subscription_start":  startup.SubscriptionStart,
		"valid_until":         startup.ValidUntil,
	}))
}

// GetStartupSubscription reports the plan of the caller's startup, visible
// to every member.
func (pc *PaymentController) GetStartupSubscription(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if user.StartupID == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "You are not part of a startup", nil)
	}

	var startup models.Startup
	if err := pc.DB.First(&startup, *user.StartupID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Startup not found", nil)
	}

	if err := utils.ResolveStartupPlan(pc.DB, &startup, time.Now()); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve subscription state", err)
	}

	limits, _ := models.LimitsFor(startup.PlanName)
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"plan_name":           startup.PlanName,
		"subscription_status": startup.SubscriptionStatus,
		"subscription_start":  startup.SubscriptionStart,
		"valid_until":         startup.ValidUntil,
		"limits":              limits,
	}))
}
