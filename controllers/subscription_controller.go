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

// SubscriptionController handles user-level plan purchases: the gateway
// order, the signature verification, and the upgrade itself.
type SubscriptionController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewSubscriptionController(db *gorm.DB, logger *logrus.Logger) *SubscriptionController {
	return &SubscriptionController{
		DB:     db,
		Logger: logger,
	}
}

type CreateOrderRequest struct {
	PlanName string `json:"plan_name" validate:"required"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

// CreateOrder opens a gateway order for a user-level plan upgrade and
// records the pending transaction keyed by the order id.
func (sc *SubscriptionController) CreateOrder(c *fiber.Ctx) error {
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

	receipt := fmt.Sprintf("user_%d_%d", user.ID, time.Now().Unix())
	orderID, err := utils.CreateOrder(limits.Price, "INR", receipt, map[string]interface{}{
		"scope":   models.ScopeUser,
		"user_id": user.ID,
		"plan":    req.PlanName,
	})
	if err != nil {
		sc.Logger.WithFields(logrus.Fields{
			"user_id": user.ID,
			"plan":    req.PlanName,
			"error":   err,
		}).Error("failed to create gateway order")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create payment order", err)
	}

	tx := models.PaymentTransaction{
		UserID:          user.ID,
		Scope:           models.ScopeUser,
		PlanName:        req.PlanName,
		Amount:          limits.Price,
		Currency:        "INR",
		Status:          models.PaymentCreated,
		RazorpayOrderID: orderID,
	}
	if err := sc.DB.Create(&tx).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record payment transaction", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"order_id": orderID,
		"amount":   limits.Price,
		"currency": "INR",
		"key_id":   config.AppConfig.RazorpayKeyID,
	}))
}

// VerifyPayment checks the gateway signature for a completed checkout. A
// signature mismatch leaves the transaction and subscription untouched; a
// match marks the transaction paid and activates the plan for one term.
func (sc *SubscriptionController) VerifyPayment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var tx models.PaymentTransaction
	if err := sc.DB.Where("razorpay_order_id = ?", req.RazorpayOrderID).First(&tx).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Payment transaction not found", nil)
	}
	if tx.UserID != user.ID || tx.Scope != models.ScopeUser {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "This payment does not belong to you", nil)
	}
	if tx.Status != models.PaymentCreated {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "This payment has already been processed", nil)
	}

	if !utils.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, config.AppConfig.RazorpayKeySecret) {
		sc.Logger.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"order_id": req.RazorpayOrderID,
		}).Warn("payment signature verification failed")
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Payment signature verification failed", nil)
	}

	now := time.Now()
	err := sc.DB.Transaction(func(dtx *gorm.DB) error {
		if err := dtx.Model(&tx).Updates(map[string]interface{}{
			"status":              models.PaymentPaid,
			"razorpay_payment_id": req.RazorpayPaymentID,
			"razorpay_signature":  req.RazorpaySignature,
		}).Error; err != nil {
			return err
		}
		return utils.ActivateUserPlan(dtx, user, tx.PlanName, now)
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to activate subscription", err)
	}

	sc.Logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"plan":    tx.PlanName,
	}).Info("user subscription activated")

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"plan_name":           user.PlanName,
		"subscription_status": user.SubscriptionStatus,
		"subscription_start":  user.SubscriptionStart,
		"subscription_end":    user.SubscriptionEnd,
	}))
}

// GetSubscription reports the caller's current plan after lazy expiry.
func (sc *SubscriptionController) GetSubscription(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if err := utils.ResolveUserPlan(sc.DB, user, time.Now()); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve subscription state", err)
	}

	limits, _ := models.LimitsFor(user.PlanName)
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"plan_name":           user.PlanName,
		"subscription_status": user.SubscriptionStatus,
		"subscription_start":  user.SubscriptionStart,
		"subscription_end":    user.SubscriptionEnd,
		"limits":              limits,
	}))
}
