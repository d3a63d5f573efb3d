package models

import "gorm.io/gorm"

// Payment transaction scopes: a purchase either upgrades the buyer's user
// subscription or their startup's subscription.
const (
	ScopeUser    = "user"
	ScopeStartup = "startup"
)

// Payment transaction statuses
const (
	PaymentCreated = "created"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// PaymentTransaction records one gateway order through its lifecycle. The
// order id is written when the order is created; payment id and signature
// arrive with the client's verify call and are stored only after the
// signature checks out.
type PaymentTransaction struct {
	gorm.Model

	UserID    uint  `gorm:"not null;index" json:"user_id"`
	StartupID *uint `gorm:"index" json:"startup_id,omitempty"`

	Scope    string `gorm:"not null" json:"scope"` // user, startup
	PlanName string `gorm:"not null" json:"plan_name"`

	Amount   int64  `gorm:"not null" json:"amount"` // smallest currency unit
	Currency string `gorm:"default:'INR'" json:"currency"`
	Status   string `gorm:"default:'created'" json:"status"` // created, paid, failed

	RazorpayOrderID   string `gorm:"uniqueIndex;not null" json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id,omitempty"`
	RazorpaySignature string `json:"-"`

	// Relations
	User User `json:"-"`
}
