package utils

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"startupops/models"
)

// Sentinel errors the controllers map onto HTTP statuses.
var (
	ErrTaskQuotaExceeded = errors.New("free plan task limit reached, upgrade to pro to create more tasks")
	ErrUnknownPlan       = errors.New("unknown plan")
)

// HeadcountError carries which cap was hit so handlers can surface it.
type HeadcountError struct {
	Resource string
	Cap      int
}

func (e *HeadcountError) Error() string {
	return fmt.Sprintf("%s limit reached for the current plan (max %d), upgrade to add more", e.Resource, e.Cap)
}

// ResolveUserPlan applies lazy expiry to a user's subscription: an active
// record whose end date has passed is demoted to free/expired and the
// demotion persisted before returning. Calling it again on an already
// expired record is a no-op, so concurrent requests racing here converge on
// the same terminal state. Must run at the start of every gated operation
// and every subscription read.
func ResolveUserPlan(db *gorm.DB, user *models.User, now time.Time) error {
	if user.SubscriptionStatus != models.SubscriptionActive {
		return nil
	}
	if user.SubscriptionEnd == nil || !user.SubscriptionEnd.Before(now) {
		return nil
	}

	user.PlanName = models.PlanFree
	user.SubscriptionStatus = models.SubscriptionExpired
	return db.Model(user).Updates(map[string]interface{}{
		"plan_name":           user.PlanName,
		"subscription_status": user.SubscriptionStatus,
	}).Error
}

// ResolveStartupPlan is the startup-level twin of ResolveUserPlan, keyed on
// ValidUntil.
func ResolveStartupPlan(db *gorm.DB, startup *models.Startup, now time.Time) error {
	if startup.SubscriptionStatus != models.SubscriptionActive {
		return nil
	}
	if startup.ValidUntil == nil || !startup.ValidUntil.Before(now) {
		return nil
	}

	startup.PlanName = models.PlanFree
	startup.SubscriptionStatus = models.SubscriptionExpired
	return db.Model(startup).Updates(map[string]interface{}{
		"plan_name":           startup.PlanName,
		"subscription_status": startup.SubscriptionStatus,
	}).Error
}

// CheckTaskQuota enforces the free-tier task gate. The count is over tasks
// created by this user, not by the whole startup. Active pro users are
// never capped.
func CheckTaskQuota(db *gorm.DB, user *models.User) error {
	if user.HasActivePro() {
		return nil
	}

	var count int64
	if err := db.Model(&models.Task{}).Where("created_by_id = ?", user.ID).Count(&count).Error; err != nil {
		return err
	}
	if count >= models.FreeTaskLimit {
		return ErrTaskQuotaExceeded
	}
	return nil
}

// CheckHeadcount compares a current count against one cap from the plan
// table. resource names the gated dimension for the error message.
func CheckHeadcount(resource string, cap int, current int64) error {
	if models.WithinCap(cap, current) {
		return nil
	}
	return &HeadcountError{Resource: resource, Cap: cap}
}

// ActivateUserPlan upgrades a user's subscription for one fixed term. The
// caller is responsible for having verified payment first.
func ActivateUserPlan(db *gorm.DB, user *models.User, plan string, now time.Time) error {
	if _, ok := models.LimitsFor(plan); !ok {
		return ErrUnknownPlan
	}

	end := now.Add(models.SubscriptionTerm)
	user.PlanName = plan
	user.SubscriptionStatus = models.SubscriptionActive
	user.SubscriptionStart = &now
	user.SubscriptionEnd = &end
	return db.Model(user).Updates(map[string]interface{}{
		"plan_name":           user.PlanName,
		"subscription_status": user.SubscriptionStatus,
		"subscription_start":  user.SubscriptionStart,
		"subscription_end":    user.SubscriptionEnd,
	}).Error
}

// ActivateStartupPlan is the startup-level twin of ActivateUserPlan.
func ActivateStartupPlan(db *gorm.DB, startup *models.Startup, plan string, now time.Time) error {
	if _, ok := models.LimitsFor(plan); !ok {
		return ErrUnknownPlan
	}

	until := now.Add(models.SubscriptionTerm)
	startup.PlanName = plan
	startup.SubscriptionStatus = models.SubscriptionActive
	startup.SubscriptionStart = &now
	startup.ValidUntil = &until
	return db.Model(startup).Updates(map[string]interface{}{
		"plan_name":           startup.PlanName,
		"subscription_status": startup.SubscriptionStatus,
		"subscription_start":  startup.SubscriptionStart,
		"valid_until":         startup.ValidUntil,
	}).Error
}
