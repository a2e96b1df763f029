package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	QuizStateUnlocked = "unlocked"
	QuizStateLocked   = "locked"
)

type Quiz struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"quiz_uuid"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	QuizTitle           string    `gorm:"size:255;not null" json:"quiz_title"`
	CreationDate        time.Time `gorm:"not null" json:"creation_date"`
	QuizState           string    `gorm:"size:20;not null;default:'unlocked'" json:"quiz_state"`
	IDCoding            string    `gorm:"size:10;not null;default:'8'" json:"id_coding"`
	NumberOfQuestions   int       `gorm:"not null;default:0" json:"number_of_questions"`
	InstitutionName     string    `gorm:"size:255;not null;default:''" json:"institution_name"`
	StudentInstructions string    `gorm:"type:text;not null;default:''" json:"student_instructions"`
	CodingExplanation   string    `gorm:"type:text;not null;default:''" json:"coding_explanation"`
	EmailSubject        string    `gorm:"size:255;not null;default:''" json:"email_subject"`
	EmailBody           string    `gorm:"type:text;not null;default:''" json:"email_body"`
	ClassTitle          string    `gorm:"size:255;not null;default:''" json:"class_title"`
	DateOfQuiz          string    `gorm:"size:50;not null;default:''" json:"date_of_quiz"`
	Duration            string    `gorm:"size:50;not null;default:''" json:"duration"`
	QuizLanguage        string    `gorm:"size:10;not null;default:'fr'" json:"quiz_language"`
	RandomQuestionOrder bool      `gorm:"not null;default:false" json:"random_question_order"`
	RandomAnswerOrder   bool      `gorm:"not null;default:false" json:"random_answer_order"`
	TwoUpPrinting       bool      `gorm:"not null;default:false" json:"two_up_printing"`
	CreatedAt           time.Time `json:"-"`
	UpdatedAt           time.Time `json:"-"`
}

// Locked reports whether content mutations are gated pending recompilation.
func (q *Quiz) Locked() bool {
	return q.QuizState == QuizStateLocked
}
