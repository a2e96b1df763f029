package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	config "github.com/radiquiz/backend/configs"
	"github.com/radiquiz/backend/database"
	"github.com/radiquiz/backend/middleware"
	"github.com/radiquiz/backend/models"
	"github.com/radiquiz/backend/notifications"
	"github.com/radiquiz/backend/services"
	"github.com/radiquiz/backend/utils"
	"github.com/radiquiz/backend/workspace"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ensureUserDefaults creates the settings row backing quiz creation
// defaults on first touch.
func ensureUserDefaults(userID uuid.UUID) models.UserDefaults {
	var defaults models.UserDefaults
	err := database.DB.Where("user_id = ?", userID).First(&defaults).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		defaults = models.UserDefaults{
			UserID:              userID,
			StudentInstructions: workspace.DefaultStudentInstructions,
			QuizLanguage:        "fr",
		}
		database.DB.Create(&defaults)
	}
	return defaults
}

// GetMe returns the profile summary shown in the settings header.
func GetMe(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	defaults := ensureUserDefaults(user.ID)
	return c.JSON(fiber.Map{
		"email":         user.Email,
		"first_name":    defaults.FirstName,
		"last_name":     defaults.LastName,
		"quiz_language": defaults.QuizLanguage,
	})
}

// UpdateMe updates the profile name fields.
func UpdateMe(c *fiber.Ctx) error {
	type Request struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No fields to update."})
	}

	user := middleware.CurrentUser(c)
	defaults := ensureUserDefaults(user.ID)
	if err := database.DB.Model(&defaults).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}
	return GetMe(c)
}

// GetDefaults returns the per-user quiz defaults.
func GetDefaults(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	defaults := ensureUserDefaults(user.ID)
	return c.JSON(fiber.Map{"defaults": defaults})
}

type UpdateDefaultsRequest struct {
	FirstName           *string `json:"first_name"`
	LastName            *string `json:"last_name"`
	InstitutionName     *string `json:"institution_name"`
	StudentInstructions *string `json:"student_instructions"`
	CodingExplanation   *string `json:"coding_explanation"`
	EmailSubject        *string `json:"email_subject"`
	EmailBody           *string `json:"email_body"`
	QuizLanguage        *string `json:"quiz_language"`
}

func defaultsUpdatesFromRequest(req UpdateDefaultsRequest) map[string]interface{} {
	updates := map[string]interface{}{}
	set := func(column string, value *string) {
		if value != nil {
			updates[column] = *value
		}
	}
	set("first_name", req.FirstName)
	set("last_name", req.LastName)
	set("institution_name", req.InstitutionName)
	set("student_instructions", req.StudentInstructions)
	set("coding_explanation", req.CodingExplanation)
	set("email_subject", req.EmailSubject)
	set("email_body", req.EmailBody)
	set("quiz_language", req.QuizLanguage)
	return updates
}

// UpdateDefaults partially updates the quiz defaults record.
func UpdateDefaults(c *fiber.Ctx) error {
	var req UpdateDefaultsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	updates := defaultsUpdatesFromRequest(req)
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No fields to update."})
	}

	user := middleware.CurrentUser(c)
	defaults := ensureUserDefaults(user.ID)
	if err := database.DB.Model(&defaults).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update defaults"})
	}

	database.DB.Where("user_id = ?", user.ID).First(&defaults)
	return c.JSON(fiber.Map{"defaults": defaults})
}

// RequestEmailChange issues a confirmation code to the new address.
func RequestEmailChange(c *fiber.Ctx) error {
	type Request struct {
		NewEmail string `json:"new_email" validate:"required,email"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	req.NewEmail = strings.ToLower(strings.TrimSpace(req.NewEmail))
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email address."})
	}

	user := middleware.CurrentUser(c)
	if req.NewEmail == user.Email {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email address is unchanged."})
	}

	var count int64
	database.DB.Model(&models.User{}).Where("email = ?", req.NewEmail).Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email address already in use."})
	}

	code, err := utils.GenerateVerificationCode(config.VerificationCodeLength())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate verification code"})
	}
	expiresAt := time.Now().UTC().Add(15 * time.Minute)

	err = database.DB.Model(user).Updates(map[string]interface{}{
		"pending_email":                req.NewEmail,
		"email_change_code":            code,
		"email_change_code_expires_at": expiresAt,
	}).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save email change request"})
	}

	go notifications.SendEmailChangeEmail(req.NewEmail, code)

	payload := fiber.Map{"message": "Verification code sent to the new address."}
	if !config.IsProduction() {
		payload["verification_code"] = code
	}
	return c.JSON(payload)
}

// VerifyEmailChange applies a pending email change once the code matches.
func VerifyEmailChange(c *fiber.Ctx) error {
	type Request struct {
		VerificationCode string `json:"verification_code"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	req.VerificationCode = strings.TrimSpace(req.VerificationCode)
	if req.VerificationCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Verification code is required."})
	}

	user := middleware.CurrentUser(c)
	if user.PendingEmail == nil || user.EmailChangeCode == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No email change requested."})
	}
	if *user.EmailChangeCode != req.VerificationCode {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid verification code."})
	}
	if user.EmailChangeCodeExpiresAt == nil || !user.EmailChangeCodeExpiresAt.After(time.Now().UTC()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Verification code expired."})
	}

	var count int64
	database.DB.Model(&models.User{}).Where("email = ?", *user.PendingEmail).Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email address already in use."})
	}

	err := database.DB.Model(user).Updates(map[string]interface{}{
		"email":                        *user.PendingEmail,
		"pending_email":                nil,
		"email_change_code":            nil,
		"email_change_code_expires_at": nil,
	}).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to change email"})
	}

	database.DB.Where("id = ?", user.ID).First(user)
	return c.JSON(fiber.Map{"user": serializeUser(user)})
}

// ChangePassword replaces the password after checking the current one, then
// revokes every other session.
func ChangePassword(c *fiber.Ctx) error {
	type Request struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Current and new passwords are required."})
	}
	if ok, message := utils.ValidatePasswordStrength(req.NewPassword); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
	}

	user := middleware.CurrentUser(c)
	if user.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Account requires Google sign-in or password reset."})
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Current password is incorrect."})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash new password"})
	}
	if err := database.DB.Model(user).Update("password", string(hashedPassword)).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to change password"})
	}

	services.RevokeUserSessions(user.ID)
	return openSession(c, user, fiber.StatusOK, fiber.Map{"message": "Password changed."})
}

// ExportWorkspace streams the user's workspace (quizzes, rosters,
// illustrations) as a zip attachment.
func ExportWorkspace(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var buf bytes.Buffer
	if err := workspace.ExportZip(user.ID.String(), &buf); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to export workspace"})
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.zip"`, user.ID.String()))
	return c.Send(buf.Bytes())
}

// DeleteAccount removes the user, every owned row, and the workspace.
func DeleteAccount(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var quizIDs []uuid.UUID
		if err := tx.Model(&models.Quiz{}).Where("user_id = ?", user.ID).Pluck("id", &quizIDs).Error; err != nil {
			return err
		}
		if len(quizIDs) > 0 {
			var questionIDs []uuid.UUID
			if err := tx.Model(&models.Question{}).Where("quiz_id IN ?", quizIDs).Pluck("id", &questionIDs).Error; err != nil {
				return err
			}
			if len(questionIDs) > 0 {
				if err := tx.Where("question_id IN ?", questionIDs).Delete(&models.Answer{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&models.Question{}).Error; err != nil {
				return err
			}
			if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&models.Subject{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.Quiz{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Class{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserDefaults{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete account"})
	}

	workspace.RemoveUserDir(user.ID.String())
	clearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "Account deleted."})
}
