package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSubjectTitle names the subject created when a quiz has none.
const DefaultSubjectTitle = "Nouvelle section"

// Subject is a named section grouping an ordered run of questions.
type Subject struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"subject_uuid"`
	QuizID       uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	SubjectTitle string    `gorm:"size:255;not null" json:"subject_title"`
	SortOrder    int       `gorm:"not null" json:"sort_order"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`

	Questions []Question `gorm:"-" json:"questions"`
}
