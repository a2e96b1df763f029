package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// QuestionTypeSimple is a multiple-choice question with exactly one
	// correct answer.
	QuestionTypeSimple = "simple"
	// QuestionTypeMultipleChoice allows zero, one, or several correct answers.
	QuestionTypeMultipleChoice = "multiple-choice"
	// QuestionTypeOpen expects a handwritten response on ruled lines.
	QuestionTypeOpen = "open"
)

type Question struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"question_uuid"`
	QuizID       uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	SubjectID    uuid.UUID `gorm:"type:uuid;not null;index" json:"subject_uuid"`
	QuestionText string    `gorm:"type:text;not null" json:"question_text"`
	QuestionType string    `gorm:"size:50;not null" json:"question_type"`
	Points       float64   `gorm:"not null;default:1" json:"points"`

	// QuestionNumber is the global display position, recomputed by the
	// server after every delete or reorder.
	QuestionNumber int `gorm:"not null" json:"question_number"`

	IllustrationFilename *string  `gorm:"size:64" json:"illustration_filename"`
	IllustrationWidth    *float64 `json:"illustration_width"`

	// NumberOfLines is only meaningful for open questions.
	NumberOfLines *int `json:"number_of_lines"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Answers []Answer `gorm:"-" json:"answers"`
}
