package models

import (
	"time"

	"github.com/google/uuid"
)

type Answer struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"answer_uuid"`
	QuestionID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	AnswerOption string    `gorm:"type:text;not null" json:"answer_option"`
	Correct      bool      `gorm:"not null;default:false" json:"correct"`
	AnswerOrder  int       `gorm:"not null" json:"answer_order"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
