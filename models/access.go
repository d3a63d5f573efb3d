package models

import "gorm.io/gorm"

// Access grant flavors, also used as the :type route parameter on revoke.
const (
	AccessInvestor = "investor"
	AccessMentor   = "mentor"
)

// InvestorAccess authorizes one investor to read one startup's dashboard.
// The composite unique index makes a second grant for the same pair fail at
// the store, independent of the handler-level duplicate check. CreatedAt is
// the grant time; the most recent grant sorts first in list views.
type InvestorAccess struct {
	gorm.Model

	InvestorID  uint `gorm:"not null;uniqueIndex:idx_investor_startup" json:"investor_id"`
	StartupID   uint `gorm:"not null;uniqueIndex:idx_investor_startup;index" json:"startup_id"`
	GrantedByID uint `gorm:"not null" json:"granted_by_id"`

	// Relations
	Investor User    `json:"-"`
	Startup  Startup `json:"startup,omitempty"`
}

// MentorAccess is the mentor-flavored twin of InvestorAccess.
type MentorAccess struct {
	gorm.Model

	MentorID    uint `gorm:"not null;uniqueIndex:idx_mentor_startup" json:"mentor_id"`
	StartupID   uint `gorm:"not null;uniqueIndex:idx_mentor_startup;index" json:"startup_id"`
	GrantedByID uint `gorm:"not null" json:"granted_by_id"`

	// Relations
	Mentor  User    `json:"-"`
	Startup Startup `json:"startup,omitempty"`
}
