package models

import (
	"time"

	"gorm.io/gorm"
)

// Startup stages
const (
	StageIdea   = "idea"
	StageMVP    = "mvp"
	StageGrowth = "growth"
)

// Task statuses
const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskDone       = "done"
)

// Startup is the aggregate a founder owns. Team membership is flat: every
// member carries this startup's id on their user record, the founder
// included. Exactly one startup exists per founder.
type Startup struct {
	gorm.Model

	Name     string `gorm:"not null" json:"name"`
	Problem  string `gorm:"type:text" json:"problem"`
	Solution string `gorm:"type:text" json:"solution"`
	Market   string `gorm:"type:text" json:"market"`
	Stage    string `gorm:"default:'idea'" json:"stage"` // idea, mvp, growth

	FounderID uint `gorm:"not null;uniqueIndex" json:"founder_id"`

	// Startup-level subscription. Gates team/investor/mentor headcounts.
	PlanName           string     `gorm:"default:'free'" json:"plan_name"`
	SubscriptionStatus string     `gorm:"default:'active'" json:"subscription_status"`
	SubscriptionStart  *time.Time `json:"subscription_start,omitempty"`
	ValidUntil         *time.Time `json:"valid_until,omitempty"`

	// Relations
	Founder    User        `json:"-"`
	Tasks      []Task      `gorm:"foreignKey:StartupID" json:"tasks,omitempty"`
	Milestones []Milestone `gorm:"foreignKey:StartupID" json:"milestones,omitempty"`
}

// ValidStage reports whether stage is a known startup stage.
func ValidStage(stage string) bool {
	switch stage {
	case StageIdea, StageMVP, StageGrowth:
		return true
	}
	return false
}

// Task is a unit of work scoped to a startup. CreatedByID drives the
// free-tier quota, which counts tasks per creating user rather than per
// startup.
type Task struct {
	gorm.Model

	StartupID   uint   `gorm:"not null;index" json:"startup_id"`
	CreatedByID uint   `gorm:"not null;index" json:"created_by_id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Status      string `gorm:"default:'todo'" json:"status"` // todo, in_progress, done

	DueDate *time.Time `json:"due_date,omitempty"`

	// Relations
	CreatedBy User `json:"-"`
}

// Milestone marks a startup goal with an optional target date.
type Milestone struct {
	gorm.Model

	StartupID   uint   `gorm:"not null;index" json:"startup_id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	TargetDate *time.Time `json:"target_date,omitempty"`
	AchievedAt *time.Time `json:"achieved_at,omitempty"`
}

// Feedback is a message any authenticated user can leave for a startup.
type Feedback struct {
	gorm.Model

	StartupID uint   `gorm:"not null;index" json:"startup_id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	Message   string `gorm:"type:text;not null" json:"message"`
	Rating    int    `gorm:"default:0" json:"rating"` // 1-5, 0 when not rated

	// Relations
	User User `json:"-"`
}
