package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAccessTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}, &Startup{}, &InvestorAccess{}, &MentorAccess{}))
	return db
}

func TestInvestorAccessUniquePerPair(t *testing.T) {
	db := newAccessTestDB(t)

	grant := InvestorAccess{InvestorID: 7, StartupID: 3, GrantedByID: 1}
	require.NoError(t, db.Create(&grant).Error)

	// Same pair again hits the composite unique index
	dup := InvestorAccess{InvestorID: 7, StartupID: 3, GrantedByID: 1}
	assert.Error(t, db.Create(&dup).Error)

	var count int64
	require.NoError(t, db.Model(&InvestorAccess{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Same investor on a different startup is fine
	other := InvestorAccess{InvestorID: 7, StartupID: 4, GrantedByID: 1}
	assert.NoError(t, db.Create(&other).Error)
}

func TestMentorAccessUniquePerPair(t *testing.T) {
	db := newAccessTestDB(t)

	grant := MentorAccess{MentorID: 9, StartupID: 3, GrantedByID: 1}
	require.NoError(t, db.Create(&grant).Error)

	dup := MentorAccess{MentorID: 9, StartupID: 3, GrantedByID: 2}
	assert.Error(t, db.Create(&dup).Error)

	// The two ledgers are independent: an investor grant for the same ids
	// does not collide with a mentor grant
	inv := InvestorAccess{InvestorID: 9, StartupID: 3, GrantedByID: 1}
	assert.NoError(t, db.Create(&inv).Error)
}
