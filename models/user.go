package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles a user account can hold. The role is assigned at registration and
// never changes afterwards.
const (
	RoleFounder  = "founder"
	RoleTeam     = "team"
	RoleInvestor = "investor"
	RoleMentor   = "mentor"
)

// Subscription plans and statuses shared by user- and startup-level
// subscriptions.
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"

	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

// User represents an account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	TokenVersion int    `gorm:"default:0" json:"-"`

	// Google OAuth fields
	GoogleID       *string `gorm:"uniqueIndex" json:"google_id,omitempty"`
	GoogleImageURL *string `json:"google_image_url,omitempty"`

	// Profile information
	Name *string `json:"name,omitempty"`
	Role string  `gorm:"not null;default:'founder'" json:"role"` // founder, team, investor, mentor

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`

	// Set when the user founds or joins a startup
	StartupID *uint `gorm:"index" json:"startup_id,omitempty"`

	// Per-user subscription. Gates the free-tier task quota and pro-only
	// features such as pitch generation. Independent from the startup-level
	// subscription, which gates headcounts.
	PlanName           string     `gorm:"default:'free'" json:"plan_name"`
	SubscriptionStatus string     `gorm:"default:'active'" json:"subscription_status"`
	SubscriptionStart  *time.Time `json:"subscription_start,omitempty"`
	SubscriptionEnd    *time.Time `json:"subscription_end,omitempty"`

	// Relations
	Transactions []PaymentTransaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
}

// HasActivePro reports whether the user currently holds an active pro
// subscription. Callers must resolve lazy expiry first.
func (u *User) HasActivePro() bool {
	return u.PlanName == PlanPro && u.SubscriptionStatus == SubscriptionActive
}

// ValidRole reports whether role is one of the four assignable roles.
func ValidRole(role string) bool {
	switch role {
	case RoleFounder, RoleTeam, RoleInvestor, RoleMentor:
		return true
	}
	return false
}
