package controller

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"startupops/models"
)

func newPaymentApp(db *gorm.DB, userID uint) *fiber.App {
	ctrl := NewPaymentController(db, newTestLogger())

	app := fiber.New()
	api := app.Group("/api", asUser(db, userID))
	api.Post("/payment/verify", ctrl.VerifyStartupPayment)
	api.Get("/payment/subscription", ctrl.GetStartupSubscription)
	return app
}

func seedStartupOrder(t *testing.T, db *gorm.DB, userID, startupID uint, plan, orderID string) *models.PaymentTransaction {
	t.Helper()
	limits, ok := models.LimitsFor(plan)
	require.True(t, ok)

	tx := models.PaymentTransaction{
		UserID:          userID,
		StartupID:       &startupID,
		Scope:           models.ScopeStartup,
		PlanName:        plan,
		Amount:          limits.Price,
		Currency:        "INR",
		Status:          models.PaymentCreated,
		RazorpayOrderID: orderID,
	}
	require.NoError(t, db.Create(&tx).Error)
	return &tx
}

func TestVerifyStartupPaymentActivatesPlan(t *testing.T) {
	setRazorpaySecret(t, "whsec_test")
	db := newTestDB(t)
	founder, startup := seedFounder(t, db, "founder@example.com")
	seedStartupOrder(t, db, founder.ID, startup.ID, models.PlanEnterprise, "order_ent")

	app := newPaymentApp(db, founder.ID)
	before := time.Now()
	resp := doJSON(t, app, http.MethodPost, "/api/payment/verify", fiber.Map{
		"razorpay_order_id":   "order_ent",
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  gatewaySignature("order_ent", "pay_123", "whsec_test"),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded models.Startup
	require.NoError(t, db.First(&reloaded, startup.ID).Error)
	assert.Equal(t, models.PlanEnterprise, reloaded.PlanName)
	assert.Equal(t, models.SubscriptionActive, reloaded.SubscriptionStatus)
	require.NotNil(t, reloaded.ValidUntil)
	assert.WithinDuration(t, before.Add(models.SubscriptionTerm), *reloaded.ValidUntil, 5*time.Second)

	// The founder's own user plan is a separate entitlement and stays free
	var user models.User
	require.NoError(t, db.First(&user, founder.ID).Error)
	assert.Equal(t, models.PlanFree, user.PlanName)
}

func TestVerifyStartupPaymentReplayDenied(t *testing.T) {
	setRazorpaySecret(t, "whsec_test")
	db := newTestDB(t)
	founder, startup := seedFounder(t, db, "founder@example.com")
	seedStartupOrder(t, db, founder.ID, startup.ID, models.PlanPro, "order_abc")

	app := newPaymentApp(db, founder.ID)
	body := fiber.Map{
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  gatewaySignature("order_abc", "pay_123", "whsec_test"),
	}

	resp := doJSON(t, app, http.MethodPost, "/api/payment/verify", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded models.Startup
	require.NoError(t, db.First(&reloaded, startup.ID).Error)
	firstUntil := *reloaded.ValidUntil

	resp = doJSON(t, app, http.MethodPost, "/api/payment/verify", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	require.NoError(t, db.First(&reloaded, startup.ID).Error)
	assert.True(t, firstUntil.Equal(*reloaded.ValidUntil), "term must not be re-extended")
}

func TestVerifyStartupPaymentRejectsUserScopeOrder(t *testing.T) {
	setRazorpaySecret(t, "whsec_test")
	db := newTestDB(t)
	founder, startup := seedFounder(t, db, "founder@example.com")
	seedOrder(t, db, founder.ID, models.PlanPro, "order_user")

	app := newPaymentApp(db, founder.ID)
	resp := doJSON(t, app, http.MethodPost, "/api/payment/verify", fiber.Map{
		"razorpay_order_id":   "order_user",
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  gatewaySignature("order_user", "pay_123", "whsec_test"),
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var reloaded models.Startup
	require.NoError(t, db.First(&reloaded, startup.ID).Error)
	assert.Equal(t, models.PlanFree, reloaded.PlanName)
	assert.Nil(t, reloaded.ValidUntil)
}

func TestGetStartupSubscriptionWithoutStartup(t *testing.T) {
	db := newTestDB(t)
	investor := seedUser(t, db, "investor@example.com", models.RoleInvestor)

	// Any authenticated caller may ask; the membership check answers
	app := newPaymentApp(db, investor.ID)
	resp := doJSON(t, app, http.MethodGet, "/api/payment/subscription", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetStartupSubscriptionForMember(t *testing.T) {
	db := newTestDB(t)
	_, startup := seedFounder(t, db, "founder@example.com")
	member := seedUser(t, db, "team@example.com", models.RoleTeam)
	require.NoError(t, db.Model(member).Update("startup_id", startup.ID).Error)

	app := newPaymentApp(db, member.ID)
	resp := doJSON(t, app, http.MethodGet, "/api/payment/subscription", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, models.PlanFree, data["plan_name"])
	assert.NotNil(t, data["limits"])
}
