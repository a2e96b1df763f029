package models

import (
	"time"

	"github.com/google/uuid"
)

// VerifiedCode marks an account whose email address has been confirmed.
const VerifiedCode = "-1"

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"user_uuid"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"size:255" json:"-"`

	// VerificationCode holds the pending email confirmation code, or
	// VerifiedCode once the account is confirmed.
	VerificationCode string `gorm:"size:20;not null;default:''" json:"-"`
	GoogleSub        *string `gorm:"size:255" json:"-"`

	// Password recovery one-time password, stored as a sha256 hex digest.
	OneTimePwd          *string    `gorm:"size:64" json:"-"`
	OneTimePwdExpiresAt *time.Time `json:"-"`

	// Pending email change, confirmed by code.
	PendingEmail                 *string    `gorm:"size:255" json:"-"`
	EmailChangeCode              *string    `gorm:"size:20" json:"-"`
	EmailChangeCodeExpiresAt     *time.Time `json:"-"`

	LastActive *time.Time `json:"last_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Verified reports whether the account finished email verification.
func (u *User) Verified() bool {
	return u.VerificationCode == VerifiedCode
}
