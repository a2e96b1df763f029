package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-side login session. The browser holds the opaque token,
// the database only ever sees its sha256 hex digest.
type Session struct {
	ID         uint      `gorm:"primary_key" json:"-"`
	TokenHash  string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	IsActive   bool      `gorm:"not null;default:true" json:"-"`
	LastActive time.Time `json:"last_active"`
	ExpiresAt  time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// Expired reports whether the session lifetime has elapsed.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
