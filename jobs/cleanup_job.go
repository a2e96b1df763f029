package jobs

import (
	"log"
	"os"
	"path/filepath"
	"time"

	config "github.com/radiquiz/backend/configs"
	"github.com/radiquiz/backend/database"
	"github.com/radiquiz/backend/models"
)

// CleanupExpiredSessions deactivates sessions past their expiry.
func CleanupExpiredSessions() {
	log.Println("Running job: CleanupExpiredSessions...")

	result := database.DB.Model(&models.Session{}).
		Where("is_active = ? AND expires_at < ?", true, time.Now().UTC()).
		Update("is_active", false)
	if result.Error != nil {
		log.Printf("Error deactivating expired sessions: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("Deactivated %d expired session(s).", result.RowsAffected)
	}
}

// CleanupExpiredRecoveryCodes clears one-time passwords and email change
// codes past their windows.
func CleanupExpiredRecoveryCodes() {
	log.Println("Running job: CleanupExpiredRecoveryCodes...")

	now := time.Now().UTC()
	result := database.DB.Model(&models.User{}).
		Where("one_time_pwd IS NOT NULL AND one_time_pwd_expires_at < ?", now).
		Updates(map[string]interface{}{
			"one_time_pwd":            nil,
			"one_time_pwd_expires_at": nil,
		})
	if result.Error != nil {
		log.Printf("Error clearing expired one-time passwords: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("Cleared %d expired one-time password(s).", result.RowsAffected)
	}

	result = database.DB.Model(&models.User{}).
		Where("email_change_code IS NOT NULL AND email_change_code_expires_at < ?", now).
		Updates(map[string]interface{}{
			"pending_email":                nil,
			"email_change_code":            nil,
			"email_change_code_expires_at": nil,
		})
	if result.Error != nil {
		log.Printf("Error clearing expired email change codes: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("Cleared %d expired email change request(s).", result.RowsAffected)
	}
}

// CleanupStaleRegistrations removes accounts that never verified their email
// within a week of registering.
func CleanupStaleRegistrations() {
	log.Println("Running job: CleanupStaleRegistrations...")

	cutoff := time.Now().UTC().Add(-7 * 24 * time.Hour)
	result := database.DB.
		Where("verification_code <> ? AND created_at < ?", models.VerifiedCode, cutoff).
		Delete(&models.User{})
	if result.Error != nil {
		log.Printf("Error purging stale registrations: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("Purged %d stale unverified account(s).", result.RowsAffected)
	}
}

// SweepOrphanIllustrations walks every quiz's illustrations directory and
// removes files no question references anymore. Runs nightly; the per-request
// garbage collection already handles the common cases, this catches files
// left behind by crashes.
func SweepOrphanIllustrations() {
	log.Println("Running job: SweepOrphanIllustrations...")

	var quizzes []models.Quiz
	if err := database.DB.Find(&quizzes).Error; err != nil {
		log.Printf("Error loading quizzes for illustration sweep: %v", err)
		return
	}

	removed := 0
	for _, quiz := range quizzes {
		var referenced []string
		err := database.DB.Model(&models.Question{}).
			Where("quiz_id = ? AND illustration_filename IS NOT NULL", quiz.ID).
			Pluck("illustration_filename", &referenced).Error
		if err != nil {
			log.Printf("Error loading illustration references for quiz %s: %v", quiz.ID, err)
			continue
		}
		inUse := make(map[string]bool, len(referenced))
		for _, filename := range referenced {
			inUse[filename] = true
		}

		dir := filepath.Join(config.StorageRoot(), quiz.UserID.String(), quiz.ID.String(), "illustrations")
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || inUse[entry.Name()] {
				continue
			}
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !os.IsNotExist(err) {
				log.Printf("Error removing orphan illustration %s: %v", entry.Name(), err)
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		log.Printf("Removed %d orphan illustration file(s).", removed)
	}
}
