package middleware

import (
	"time"

	config "github.com/radiquiz/backend/configs"
	"github.com/radiquiz/backend/database"
	"github.com/radiquiz/backend/models"
	"github.com/radiquiz/backend/utils"
	"github.com/gofiber/fiber/v2"
)

const (
	// UserKey is the fiber.Ctx locals key holding the authenticated *models.User.
	UserKey = "currentUser"
	// SessionKey is the fiber.Ctx locals key holding the active *models.Session.
	SessionKey = "currentSession"
)

// Protected authenticates the request from its session cookie. The cookie
// carries an opaque token; only its sha256 digest is stored server-side, so a
// database leak does not leak live sessions.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(config.SessionCookieName())
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated."})
		}

		var session models.Session
		err := database.DB.Where("token_hash = ? AND is_active = ?", utils.HashToken(token), true).
			First(&session).Error
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated."})
		}

		now := time.Now().UTC()
		if session.Expired(now) {
			database.DB.Model(&session).Update("is_active", false)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated."})
		}

		var user models.User
		if err := database.DB.Where("id = ?", session.UserID).First(&user).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated."})
		}

		database.DB.Model(&session).Update("last_active", now)
		database.DB.Model(&user).UpdateColumn("last_active", now)

		c.Locals(UserKey, &user)
		c.Locals(SessionKey, &session)
		return c.Next()
	}
}

// CurrentUser returns the authenticated user set by Protected.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(UserKey).(*models.User)
	return user
}

// CurrentSession returns the active session set by Protected.
func CurrentSession(c *fiber.Ctx) *models.Session {
	session, _ := c.Locals(SessionKey).(*models.Session)
	return session
}
