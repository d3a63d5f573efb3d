package utils

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"startupops/config"
	"startupops/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.MigrateDB(db))
	return db
}

func TestResolveUserPlanDemotesExpired(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	start := now.Add(-40 * 24 * time.Hour)
	end := now.Add(-10 * 24 * time.Hour)

	user := models.User{
		Email:              "founder@example.com",
		PasswordHash:       "x",
		Role:               models.RoleFounder,
		PlanName:           models.PlanPro,
		SubscriptionStatus: models.SubscriptionActive,
		SubscriptionStart:  &start,
		SubscriptionEnd:    &end,
	}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, ResolveUserPlan(db, &user, now))
	assert.Equal(t, models.PlanFree, user.PlanName)
	assert.Equal(t, models.SubscriptionExpired, user.SubscriptionStatus)

	// Demotion is persisted, not just in-memory
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, models.PlanFree, reloaded.PlanName)
	assert.Equal(t, models.SubscriptionExpired, reloaded.SubscriptionStatus)
}

func TestResolveUserPlanIdempotent(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	end := now.Add(-time.Hour)

	user := models.User{
		Email:              "founder@example.com",
		PasswordHash:       "x",
		Role:               models.RoleFounder,
		PlanName:           models.PlanPro,
		SubscriptionStatus: models.SubscriptionActive,
		SubscriptionEnd:    &end,
	}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, ResolveUserPlan(db, &user, now))
	firstUpdate := user.UpdatedAt

	// Second resolution converges on the same state without touching the row
	require.NoError(t, ResolveUserPlan(db, &user, now))
	assert.Equal(t, models.PlanFree, user.PlanName)
	assert.Equal(t, models.SubscriptionExpired, user.SubscriptionStatus)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, firstUpdate.Unix(), reloaded.UpdatedAt.Unix())
}

func TestResolveUserPlanLeavesActiveAlone(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	end := now.Add(10 * 24 * time.Hour)

	user := models.User{
		Email:              "founder@example.com",
		PasswordHash:       "x",
		Role:               models.RoleFounder,
		PlanName:           models.PlanPro,
		SubscriptionStatus: models.SubscriptionActive,
		SubscriptionEnd:    &end,
	}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, ResolveUserPlan(db, &user, now))
	assert.Equal(t, models.PlanPro, user.PlanName)
	assert.Equal(t, models.SubscriptionActive, user.SubscriptionStatus)
}

func TestResolveStartupPlanDemotesExpired(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	until := now.Add(-time.Hour)

	startup := models.Startup{
		Name:               "Acme",
		FounderID:          1,
		PlanName:           models.PlanEnterprise,
		SubscriptionStatus: models.SubscriptionActive,
		ValidUntil:         &until,
	}
	require.NoError(t, db.Create(&startup).Error)

	require.NoError(t, ResolveStartupPlan(db, &startup, now))
	assert.Equal(t, models.PlanFree, startup.PlanName)
	assert.Equal(t, models.SubscriptionExpired, startup.SubscriptionStatus)
}

func TestCheckTaskQuota(t *testing.T) {
	db := newTestDB(t)

	user := models.User{
		Email:        "founder@example.com",
		PasswordHash: "x",
		Role:         models.RoleFounder,
		PlanName:     models.PlanFree,
	}
	require.NoError(t, db.Create(&user).Error)

	startup := models.Startup{Name: "Acme", FounderID: user.ID}
	require.NoError(t, db.Create(&startup).Error)

	for i := 0; i < models.FreeTaskLimit-1; i++ {
		require.NoError(t, db.Create(&models.Task{
			StartupID:   startup.ID,
			CreatedByID: user.ID,
			Title:       fmt.Sprintf("task %d", i),
		}).Error)
	}

	// One slot left
	assert.NoError(t, CheckTaskQuota(db, &user))

	require.NoError(t, db.Create(&models.Task{
		StartupID:   startup.ID,
		CreatedByID: user.ID,
		Title:       "the tenth task",
	}).Error)

	// At the cap exactly
	assert.ErrorIs(t, CheckTaskQuota(db, &user), ErrTaskQuotaExceeded)
}

func TestCheckTaskQuotaCountsPerCreator(t *testing.T) {
	db := newTestDB(t)

	founder := models.User{Email: "founder@example.com", PasswordHash: "x", Role: models.RoleFounder}
	require.NoError(t, db.Create(&founder).Error)
	teammate := models.User{Email: "team@example.com", PasswordHash: "x", Role: models.RoleTeam}
	require.NoError(t, db.Create(&teammate).Error)

	startup := models.Startup{Name: "Acme", FounderID: founder.ID}
	require.NoError(t, db.Create(&startup).Error)

	for i := 0; i < models.FreeTaskLimit; i++ {
		require.NoError(t, db.Create(&models.Task{
			StartupID:   startup.ID,
			CreatedByID: founder.ID,
			Title:       fmt.Sprintf("task %d", i),
		}).Error)
	}

	// The founder maxed out their own quota; the teammate's is untouched
	assert.ErrorIs(t, CheckTaskQuota(db, &founder), ErrTaskQuotaExceeded)
	assert.NoError(t, CheckTaskQuota(db, &teammate))
}

func TestCheckTaskQuotaProBypass(t *testing.T) {
	db := newTestDB(t)

	user := models.User{
		Email:              "founder@example.com",
		PasswordHash:       "x",
		Role:               models.RoleFounder,
		PlanName:           models.PlanPro,
		SubscriptionStatus: models.SubscriptionActive,
	}
	require.NoError(t, db.Create(&user).Error)

	startup := models.Startup{Name: "Acme", FounderID: user.ID}
	require.NoError(t, db.Create(&startup).Error)

	for i := 0; i < models.FreeTaskLimit+5; i++ {
		require.NoError(t, db.Create(&models.Task{
			StartupID:   startup.ID,
			CreatedByID: user.ID,
			Title:       fmt.Sprintf("task %d", i),
		}).Error)
	}

	assert.NoError(t, CheckTaskQuota(db, &user))
}

func TestCheckHeadcount(t *testing.T) {
	assert.NoError(t, CheckHeadcount("team member", 3, 2))

	err := CheckHeadcount("team member", 3, 3)
	require.Error(t, err)
	var hcErr *HeadcountError
	require.ErrorAs(t, err, &hcErr)
	assert.Equal(t, "team member", hcErr.Resource)
	assert.Equal(t, 3, hcErr.Cap)

	// Unlimited never trips
	assert.NoError(t, CheckHeadcount("investor", models.Unlimited, 1000000))
}

func TestActivateUserPlan(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()

	user := models.User{Email: "founder@example.com", PasswordHash: "x", Role: models.RoleFounder}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, ActivateUserPlan(db, &user, models.PlanPro, now))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, models.PlanPro, reloaded.PlanName)
	assert.Equal(t, models.SubscriptionActive, reloaded.SubscriptionStatus)
	require.NotNil(t, reloaded.SubscriptionEnd)
	assert.Equal(t, now.Add(models.SubscriptionTerm).Unix(), reloaded.SubscriptionEnd.Unix())
}

func TestActivateUserPlanRejectsUnknownPlan(t *testing.T) {
	db := newTestDB(t)

	user := models.User{Email: "founder@example.com", PasswordHash: "x", Role: models.RoleFounder}
	require.NoError(t, db.Create(&user).Error)

	assert.ErrorIs(t, ActivateUserPlan(db, &user, "platinum", time.Now()), ErrUnknownPlan)
	assert.Equal(t, models.PlanFree, user.PlanName)
}

func TestActivateStartupPlan(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()

	startup := models.Startup{Name: "Acme", FounderID: 1}
	require.NoError(t, db.Create(&startup).Error)

	require.NoError(t, ActivateStartupPlan(db, &startup, models.PlanEnterprise, now))

	var reloaded models.Startup
	require.NoError(t, db.First(&reloaded, startup.ID).Error)
	assert.Equal(t, models.PlanEnterprise, reloaded.PlanName)
	require.NotNil(t, reloaded.ValidUntil)
	assert.Equal(t, now.Add(models.SubscriptionTerm).Unix(), reloaded.ValidUntil.Unix())
}
