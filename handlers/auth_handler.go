package handlers

import (
	"errors"
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
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var validate = validator.New()

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func serializeUser(user *models.User) fiber.Map {
	return fiber.Map{
		"email":       user.Email,
		"user_uuid":   user.ID.String(),
		"last_active": user.LastActive,
	}
}

func setSessionCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     config.SessionCookieName(),
		Value:    token,
		Expires:  expiresAt,
		MaxAge:   int(config.SessionLifetime().Seconds()),
		HTTPOnly: true,
		Secure:   config.SessionCookieSecure(),
		SameSite: "Lax",
		Path:     "/",
	})
}

func clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     config.SessionCookieName(),
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Path:     "/",
	})
}

func openSession(c *fiber.Ctx, user *models.User, status int, extra fiber.Map) error {
	token, expiresAt, err := services.CreateSession(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
	}
	setSessionCookie(c, token, expiresAt)

	payload := fiber.Map{
		"user":               serializeUser(user),
		"session_expires_at": expiresAt.UTC().Format(time.RFC3339),
	}
	for key, value := range extra {
		payload[key] = value
	}
	return c.Status(status).JSON(payload)
}

// RegisterUser starts email/password registration. The account stays
// unusable until the emailed code is confirmed; re-registering an unverified
// address simply re-issues credentials and a fresh code.
func RegisterUser(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email address."})
	}
	if ok, message := utils.ValidatePasswordStrength(req.Password); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}
	code, err := utils.GenerateVerificationCode(config.VerificationCodeLength())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate verification code"})
	}

	var existing models.User
	err = database.DB.Where("email = ?", req.Email).First(&existing).Error
	switch {
	case err == nil && existing.Verified():
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Account already exists. Please log in."})
	case err == nil:
		updates := map[string]interface{}{
			"password":          string(hashedPassword),
			"verification_code": code,
		}
		if err := database.DB.Model(&existing).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update account"})
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user := models.User{
			Email:            req.Email,
			Password:         string(hashedPassword),
			VerificationCode: code,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
		}
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}

	go notifications.SendVerificationEmail(req.Email, code)

	payload := fiber.Map{"message": "Verification code sent."}
	if !config.IsProduction() {
		payload["verification_code"] = code
	}
	return c.Status(fiber.StatusCreated).JSON(payload)
}

// VerifyRegistration confirms the emailed code, provisions the workspace,
// and opens the first session.
func VerifyRegistration(c *fiber.Ctx) error {
	type Request struct {
		Email            string `json:"email" validate:"required,email"`
		VerificationCode string `json:"verification_code" validate:"required"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.VerificationCode = strings.TrimSpace(req.VerificationCode)
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email address."})
	}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Account not found."})
	}
	if user.Verified() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Account already verified."})
	}
	if user.VerificationCode != req.VerificationCode {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid verification code."})
	}

	now := time.Now().UTC()
	err := database.DB.Model(&user).Updates(map[string]interface{}{
		"verification_code": models.VerifiedCode,
		"last_active":       now,
	}).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to verify account"})
	}

	if _, err := workspace.UserDir(user.ID.String()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to provision workspace"})
	}
	ensureUserDefaults(user.ID)

	return openSession(c, &user, fiber.StatusOK, nil)
}

// LoginUser authenticates a verified account. A valid unexpired one-time
// password answers 409 so the frontend can route into the reset flow.
func LoginUser(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email address."})
	}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil || !user.Verified() {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials."})
	}
	if user.Password == "" {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Account requires Google sign-in or password reset."})
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) == nil {
		return openSession(c, &user, fiber.StatusOK, nil)
	}

	if user.OneTimePwd != nil && user.OneTimePwdExpiresAt != nil &&
		user.OneTimePwdExpiresAt.After(time.Now().UTC()) &&
		utils.VerifyHashedToken(req.Password, *user.OneTimePwd) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":                   "One-time password accepted. Please reset your password.",
			"requires_password_reset": true,
		})
	}

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials."})
}

type googleTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Sub           string `json:"sub"`
	jwt.RegisteredClaims
}

// parseGoogleIDToken extracts the identity claims from a Google ID token.
// Signature verification happens on Google's side of the OAuth exchange; the
// backend only needs the asserted email and subject.
func parseGoogleIDToken(idToken string) (*googleTokenClaims, error) {
	claims := &googleTokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return nil, errors.New("Unable to decode Google ID token.")
	}
	claims.Email = strings.ToLower(strings.TrimSpace(claims.Email))
	if !utils.IsValidEmail(claims.Email) {
		return nil, errors.New("Google token missing valid email.")
	}
	return claims, nil
}

func upsertGoogleUser(claims *googleTokenClaims) (*models.User, error) {
	var user models.User
	err := database.DB.Where("email = ?", claims.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Email:            claims.Email,
			GoogleSub:        &claims.Sub,
			VerificationCode: models.VerifiedCode,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else {
		updates := map[string]interface{}{
			"google_sub":        claims.Sub,
			"verification_code": models.VerifiedCode,
		}
		if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if _, err := workspace.UserDir(user.ID.String()); err != nil {
		return nil, err
	}
	ensureUserDefaults(user.ID)
	return &user, nil
}

// GoogleAuth handles both Google registration and login: the account is
// upserted as verified either way.
func GoogleAuth(c *fiber.Ctx) error {
	type Request struct {
		IDToken string `json:"id_token"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if req.IDToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id_token is required."})
	}

	claims, err := parseGoogleIDToken(req.IDToken)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := upsertGoogleUser(claims)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sign in with Google"})
	}
	return openSession(c, user, fiber.StatusOK, nil)
}

// ForgotPassword issues a one-time password without revealing whether the
// account exists.
func ForgotPassword(c *fiber.Ctx) error {
	type Request struct {
		Email string `json:"email" validate:"required,email"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email address."})
	}

	anonymous := fiber.Map{"message": "If the account exists, an email has been sent."}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.JSON(anonymous)
	}

	otp, err := utils.GenerateOneTimePassword()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate one-time password"})
	}
	otpHash := utils.HashToken(otp)
	expiresAt := time.Now().UTC().Add(15 * time.Minute)

	err = database.DB.Model(&user).Updates(map[string]interface{}{
		"one_time_pwd":            otpHash,
		"one_time_pwd_expires_at": expiresAt,
	}).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save one-time password"})
	}

	go notifications.SendPasswordResetEmail(user.Email, otp, expiresAt)

	payload := fiber.Map{"message": "One-time password sent."}
	if !config.IsProduction() {
		payload["one_time_password"] = otp
	}
	return c.JSON(payload)
}

// ResetPassword consumes the one-time password, replaces the credentials,
// revokes every open session, and opens a fresh one.
func ResetPassword(c *fiber.Ctx) error {
	type Request struct {
		Email       string `json:"email" validate:"required,email"`
		OTP         string `json:"otp" validate:"required"`
		NewPassword string `json:"new_password" validate:"required"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.OTP = strings.TrimSpace(req.OTP)
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email address."})
	}
	if ok, message := utils.ValidatePasswordStrength(req.NewPassword); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
	}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reset request."})
	}
	if user.OneTimePwd == nil || user.OneTimePwdExpiresAt == nil ||
		!utils.VerifyHashedToken(req.OTP, *user.OneTimePwd) ||
		!user.OneTimePwdExpiresAt.After(time.Now().UTC()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or expired code."})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash new password"})
	}

	err = database.DB.Model(&user).Updates(map[string]interface{}{
		"password":                string(hashedPassword),
		"one_time_pwd":            nil,
		"one_time_pwd_expires_at": nil,
	}).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reset password"})
	}

	services.RevokeUserSessions(user.ID)
	return openSession(c, &user, fiber.StatusOK, fiber.Map{"message": "Password reset successfully."})
}

// GetSession reports the authenticated user and session expiry.
func GetSession(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	session := middleware.CurrentSession(c)
	return c.JSON(fiber.Map{
		"user":               serializeUser(user),
		"session_expires_at": session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// RefreshSession extends the current session's lifetime.
func RefreshSession(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)
	expiresAt, err := services.RefreshSessionLifetime(session)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to refresh session"})
	}

	if token := c.Cookies(config.SessionCookieName()); token != "" {
		setSessionCookie(c, token, expiresAt)
	}
	return c.JSON(fiber.Map{
		"message":            "Session refreshed.",
		"session_expires_at": expiresAt.UTC().Format(time.RFC3339),
	})
}

// Logout invalidates the session behind the cookie. Safe to call without one.
func Logout(c *fiber.Ctx) error {
	if token := c.Cookies(config.SessionCookieName()); token != "" {
		services.InvalidateSession(token)
	}
	clearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out."})
}
