package models

import "time"

// Unlimited marks a cap that is always satisfied.
const Unlimited = -1

// FreeTaskLimit is the number of tasks a free-plan user may create. The cap
// is per creating user, not per startup.
const FreeTaskLimit = 10

// SubscriptionTerm is the fixed length of a paid subscription. There is no
// auto-renewal; expired records are demoted lazily at read time.
const SubscriptionTerm = 30 * 24 * time.Hour

// PlanLimit holds the numeric caps and price for one plan. Price is in the
// smallest currency unit (paise for INR).
type PlanLimit struct {
	Team      int   `json:"team"`
	Investors int   `json:"investors"`
	Mentors   int   `json:"mentors"`
	Price     int64 `json:"price"`
}

// PlanLimits is the single canonical entitlement table. Both the user-level
// and the startup-level gates consult it; do not duplicate these numbers
// elsewhere.
var PlanLimits = map[string]PlanLimit{
	PlanFree:       {Team: 3, Investors: 1, Mentors: 1, Price: 0},
	PlanPro:        {Team: 15, Investors: 10, Mentors: 10, Price: 99900},
	PlanEnterprise: {Team: Unlimited, Investors: Unlimited, Mentors: Unlimited, Price: 499900},
}

// LimitsFor returns the caps for a plan name. The second return is false for
// unknown plans; callers must reject those with a bad-request error rather
// than falling back to free.
func LimitsFor(plan string) (PlanLimit, bool) {
	l, ok := PlanLimits[plan]
	return l, ok
}

// WithinCap reports whether one more unit fits under the cap. Unlimited caps
// compare as always satisfied.
func WithinCap(cap int, current int64) bool {
	return cap == Unlimited || current < int64(cap)
}
