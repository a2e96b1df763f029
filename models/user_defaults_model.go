package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDefaults holds the per-user values backfilled into newly created
// quizzes and shown on the settings page.
type UserDefaults struct {
	ID                  uint      `gorm:"primary_key" json:"-"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
	FirstName           string    `gorm:"size:255;not null;default:''" json:"first_name"`
	LastName            string    `gorm:"size:255;not null;default:''" json:"last_name"`
	InstitutionName     string    `gorm:"size:255;not null;default:''" json:"institution_name"`
	StudentInstructions string    `gorm:"type:text;not null;default:''" json:"student_instructions"`
	CodingExplanation   string    `gorm:"type:text;not null;default:''" json:"coding_explanation"`
	EmailSubject        string    `gorm:"size:255;not null;default:''" json:"email_subject"`
	EmailBody           string    `gorm:"type:text;not null;default:''" json:"email_body"`
	QuizLanguage        string    `gorm:"size:10;not null;default:'fr'" json:"quiz_language"`
	CreatedAt           time.Time `json:"-"`
	UpdatedAt           time.Time `json:"-"`
}
