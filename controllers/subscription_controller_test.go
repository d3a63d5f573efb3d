package controller

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"startupops/config"
	"startupops/models"
)

func newSubscriptionApp(db *gorm.DB, userID uint) *fiber.App {
	ctrl := NewSubscriptionController(db, newTestLogger())

	app := fiber.New()
	api := app.Group("/api", asUser(db, userID))
	api.Post("/subscription/verify", ctrl.VerifyPayment)
	api.Get("/subscription", ctrl.GetSubscription)
	return app
}

func setRazorpaySecret(t *testing.T, secret string) {
	t.Helper()
	saved := config.AppConfig.RazorpayKeySecret
	config.AppConfig.RazorpayKeySecret = secret
	t.Cleanup(func() { config.AppConfig.RazorpayKeySecret = saved })
}

func gatewaySignature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func seedOrder(t *testing.T, db *gorm.DB, userID uint, plan, orderID string) *models.PaymentTransaction {
	t.Helper()
	limits, ok := models.LimitsFor(plan)
	require.True(t, ok)

	tx := models.PaymentTransaction{
		UserID:          userID,
		Scope:           models.ScopeUser,
		PlanName:        plan,
		Amount:          limits.Price,
		Currency:        "INR",
		Status:          models.PaymentCreated,
		RazorpayOrderID: orderID,
	}
	require.NoError(t, db.Create(&tx).Error)
	return &tx
}

func TestVerifyPaymentActivatesPlan(t *testing.T) {
	setRazorpaySecret(t, "whsec_test")
	db := newTestDB(t)
	founder, _ := seedFounder(t, db, "founder@example.com")
	seedOrder(t, db, founder.ID, models.PlanPro, "order_abc")

	app := newSubscriptionApp(db, founder.ID)
	before := time.Now()
	resp := doJSON(t, app, http.MethodPost, "/api/subscription/verify", fiber.Map{
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  gatewaySignature("order_abc", "pay_123", "whsec_test"),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, db.First(&user, founder.ID).Error)
	assert.Equal(t, models.PlanPro, user.PlanName)
	assert.Equal(t, models.SubscriptionActive, user.SubscriptionStatus)
	require.NotNil(t, user.SubscriptionStart)
	require.NotNil(t, user.SubscriptionEnd)
	assert.WithinDuration(t, before.Add(models.SubscriptionTerm), *user.SubscriptionEnd, 5*time.Second)

	var tx models.PaymentTransaction
	require.NoError(t, db.Where("razorpay_order_id = ?", "order_abc").First(&tx).Error)
	assert.Equal(t, models.PaymentPaid, tx.Status)
	assert.Equal(t, "pay_123", tx.RazorpayPaymentID)
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	setRazorpaySecret(t, "whsec_test")
	db := newTestDB(t)
	founder, _ := seedFounder(t, db, "founder@example.com")
	seedOrder(t, db, founder.ID, models.PlanPro, "order_abc")

	app := newSubscriptionApp(db, founder.ID)
	resp := doJSON(t, app, http.MethodPost, "/api/subscription/verify", fiber.Map{
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  gatewaySignature("order_abc", "pay_999", "whsec_test"),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Nothing changed: plan still free, transaction still pending
	var user models.User
	require.NoError(t, db.First(&user, founder.ID).Error)
	assert.Equal(t, models.PlanFree, user.PlanName)
	assert.Nil(t, user.SubscriptionEnd)

	var tx models.PaymentTransaction
	require.NoError(t, db.Where("razorpay_order_id = ?", "order_abc").First(&tx).Error)
	assert.Equal(t, models.PaymentCreated, tx.Status)
	assert.Empty(t, tx.RazorpayPaymentID)
}

func TestVerifyPaymentRejectsStartupScopeOrder(t *testing.T) {
	setRazorpaySecret(t, "whsec_test")
	db := newTestDB(t)
	founder, startup := seedFounder(t, db, "founder@example.com")

	// A genuine startup-scope checkout must not double as a user upgrade
	tx := models.PaymentTransaction{
		UserID:          founder.ID,
		StartupID:       &startup.ID,
		Scope:           models.ScopeStartup,
		PlanName:        models.PlanPro,
		Amount:          99900,
		Currency:        "INR",
		Status:          models.PaymentCreated,
		RazorpayOrderID: "order_startup",
	}
	require.NoError(t, db.Create(&tx).Error)

	app := newSubscriptionApp(db, founder.ID)
	resp := doJSON(t, app, http.MethodPost, "/api/subscription/verify", fiber.Map{
		"razorpay_order_id":   "order_startup",
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  gatewaySignature("order_startup", "pay_123", "whsec_test"),
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var user models.User
	require.NoError(t, db.First(&user, founder.ID).Error)
	assert.Equal(t, models.PlanFree, user.PlanName)
	assert.Nil(t, user.SubscriptionEnd)
}

func TestVerifyPaymentReplayDenied(t *testing.T) {
	setRazorpaySecret(t, "whsec_test")
	db := newTestDB(t)
	founder, _ := seedFounder(t, db, "founder@example.com")
	seedOrder(t, db, founder.ID, models.PlanPro, "order_abc")

	app := newSubscriptionApp(db, founder.ID)
	body := fiber.Map{
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  gatewaySignature("order_abc", "pay_123", "whsec_test"),
	}

	resp := doJSON(t, app, http.MethodPost, "/api/subscription/verify", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, db.First(&user, founder.ID).Error)
	firstEnd := *user.SubscriptionEnd

	// Same order id and signature a second time buys nothing more
	resp = doJSON(t, app, http.MethodPost, "/api/subscription/verify", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	require.NoError(t, db.First(&user, founder.ID).Error)
	assert.True(t, firstEnd.Equal(*user.SubscriptionEnd), "term must not be re-extended")
}

func TestVerifyPaymentRequiresAllFields(t *testing.T) {
	setRazorpaySecret(t, "whsec_test")
	db := newTestDB(t)
	founder, _ := seedFounder(t, db, "founder@example.com")

	app := newSubscriptionApp(db, founder.ID)
	resp := doJSON(t, app, http.MethodPost, "/api/subscription/verify", fiber.Map{
		"razorpay_order_id": "order_abc",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVerifyPaymentUnknownOrder(t *testing.T) {
	setRazorpaySecret(t, "whsec_test")
	db := newTestDB(t)
	founder, _ := seedFounder(t, db, "founder@example.com")

	app := newSubscriptionApp(db, founder.ID)
	resp := doJSON(t, app, http.MethodPost, "/api/subscription/verify", fiber.Map{
		"razorpay_order_id":   "order_missing",
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  gatewaySignature("order_missing", "pay_123", "whsec_test"),
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVerifyPaymentForeignOrder(t *testing.T) {
	setRazorpaySecret(t, "whsec_test")
	db := newTestDB(t)
	founderA, _ := seedFounder(t, db, "a@example.com")
	founderB, _ := seedFounder(t, db, "b@example.com")
	seedOrder(t, db, founderA.ID, models.PlanPro, "order_abc")

	// Founder B cannot complete founder A's checkout
	app := newSubscriptionApp(db, founderB.ID)
	resp := doJSON(t, app, http.MethodPost, "/api/subscription/verify", fiber.Map{
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  gatewaySignature("order_abc", "pay_123", "whsec_test"),
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGetSubscriptionAppliesLazyExpiry(t *testing.T) {
	db := newTestDB(t)
	founder, _ := seedFounder(t, db, "founder@example.com")

	end := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(founder).Updates(map[string]interface{}{
		"plan_name":           models.PlanPro,
		"subscription_status": models.SubscriptionActive,
		"subscription_end":    end,
	}).Error)

	app := newSubscriptionApp(db, founder.ID)
	resp := doJSON(t, app, http.MethodGet, "/api/subscription", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, models.PlanFree, data["plan_name"])
	assert.Equal(t, models.SubscriptionExpired, data["subscription_status"])

	// And the demotion is durable
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, founder.ID).Error)
	assert.Equal(t, models.PlanFree, reloaded.PlanName)
}
