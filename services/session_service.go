package services

import (
	"time"

	config "github.com/radiquiz/backend/configs"
	"github.com/radiquiz/backend/database"
	"github.com/radiquiz/backend/models"
	"github.com/radiquiz/backend/utils"
	"github.com/google/uuid"
)

// CreateSession opens a server-side session and returns the plain token for
// the cookie together with its expiry.
func CreateSession(userID uuid.UUID) (string, time.Time, error) {
	token, err := utils.GenerateSessionToken()
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(config.SessionLifetime())
	session := models.Session{
		TokenHash:  utils.HashToken(token),
		UserID:     userID,
		IsActive:   true,
		LastActive: now,
		ExpiresAt:  expiresAt,
	}
	if err := database.DB.Create(&session).Error; err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// RefreshSessionLifetime extends an active session and returns the new expiry.
func RefreshSessionLifetime(session *models.Session) (time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(config.SessionLifetime())
	err := database.DB.Model(session).Updates(map[string]interface{}{
		"last_active": now,
		"expires_at":  expiresAt,
	}).Error
	if err != nil {
		return time.Time{}, err
	}
	return expiresAt, nil
}

// InvalidateSession deactivates the session behind a cookie token.
func InvalidateSession(token string) {
	database.DB.Model(&models.Session{}).
		Where("token_hash = ?", utils.HashToken(token)).
		Update("is_active", false)
}

// RevokeUserSessions deactivates every session of a user, e.g. after a
// password reset.
func RevokeUserSessions(userID uuid.UUID) {
	database.DB.Model(&models.Session{}).
		Where("user_id = ?", userID).
		Update("is_active", false)
}
