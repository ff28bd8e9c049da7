package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is both the account and the progress record: one row per learner.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password    string    `gorm:"not null;column:password" json:"-"`
	DisplayName string    `gorm:"column:display_name" json:"display_name"`
	AvatarURL   string    `gorm:"column:avatar_url" json:"avatar_url"`

	TotalPoints   int                              `gorm:"not null;default:0;column:total_points;index" json:"total_points"`
	CurrentStreak datatypes.JSONType[StreakState] `gorm:"column:current_streak" json:"current_streak"`
	LongestStreak int                              `gorm:"not null;default:0;column:longest_streak" json:"longest_streak"`

	CodingQuestionsAttempted      int `gorm:"not null;default:0;column:coding_questions_attempted" json:"coding_questions_attempted"`
	TechnicalQuestionsAttempted   int `gorm:"not null;default:0;column:technical_questions_attempted" json:"technical_questions_attempted"`
	FundamentalQuestionsAttempted int `gorm:"not null;default:0;column:fundamental_questions_attempted" json:"fundamental_questions_attempted"`
	AlgorithmsAttempted           int `gorm:"not null;default:0;column:algorithms_attempted" json:"algorithms_attempted"`
	SystemDesignCovered           int `gorm:"not null;default:0;column:system_design_covered" json:"system_design_covered"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Streak returns the decoded streak pair.
func (u *User) Streak() StreakState {
	return u.CurrentStreak.Data()
}

// QuestionsAttempted sums the three primary question-set counters.
func (u *User) QuestionsAttempted() int {
	return u.CodingQuestionsAttempted + u.TechnicalQuestionsAttempted + u.FundamentalQuestionsAttempted
}

// Counter returns the value of a counter column, false for unknown columns.
func (u *User) Counter(column string) (int, bool) {
	switch column {
	case "coding_questions_attempted":
		return u.CodingQuestionsAttempted, true
	case "technical_questions_attempted":
		return u.TechnicalQuestionsAttempted, true
	case "fundamental_questions_attempted":
		return u.FundamentalQuestionsAttempted, true
	case "algorithms_attempted":
		return u.AlgorithmsAttempted, true
	case "system_design_covered":
		return u.SystemDesignCovered, true
	}
	return 0, false
}
