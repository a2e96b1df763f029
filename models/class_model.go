package models

import (
	"time"

	"github.com/google/uuid"
)

// Class is a student list. The roster itself lives as a CSV file in the
// owner's workspace; the row only carries a summary manifest.
type Class struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"list_uuid"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ClassTitle string    `gorm:"size:255;not null" json:"class_title"`

	// StudentList is the JSON manifest {student_count, last_updated}.
	StudentList string `gorm:"type:text;not null;default:''" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentManifest summarizes a class roster without reading the CSV.
type StudentManifest struct {
	StudentCount int    `json:"student_count"`
	LastUpdated  string `json:"last_updated"`
}

// RosterEntry is one line of a class roster CSV. Header names follow the
// AMC list convention (id, nom, prenom, email).
type RosterEntry struct {
	ID        string `json:"id"`
	LastName  string `json:"nom"`
	FirstName string `json:"prenom"`
	Email     string `json:"email"`
}
