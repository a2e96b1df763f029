package config

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var loadEnvOnce sync.Once

func Config(key string) string {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Warning: .env file not found, reading from system environment variables")
		}
	})

	return os.Getenv(key)
}

// ConfigOr returns the value for key, or fallback when the variable is unset.
func ConfigOr(key, fallback string) string {
	value := Config(key)
	if value == "" {
		return fallback
	}
	return value
}

// SessionLifetime reads SESSION_LIFETIME_HOURS, defaulting to 72 hours.
func SessionLifetime() time.Duration {
	hours, err := strconv.Atoi(Config("SESSION_LIFETIME_HOURS"))
	if err != nil || hours <= 0 {
		hours = 72
	}
	return time.Duration(hours) * time.Hour
}

// SessionCookieName returns the cookie carrying the session token.
func SessionCookieName() string {
	return ConfigOr("SESSION_COOKIE_NAME", "radi_session")
}

// SessionCookieSecure reports whether session cookies require HTTPS.
func SessionCookieSecure() bool {
	return Config("SESSION_COOKIE_SECURE") == "true"
}

// VerificationCodeLength returns the number of digits in emailed codes.
func VerificationCodeLength() int {
	length, err := strconv.Atoi(Config("VERIFICATION_CODE_LENGTH"))
	if err != nil || length <= 0 {
		return 6
	}
	return length
}

// IsProduction reports whether the server runs with production behavior
// (verification codes and one-time passwords are not echoed in responses).
func IsProduction() bool {
	return Config("ENVIRONMENT") == "production"
}

// StorageRoot returns the directory holding per-user workspaces.
func StorageRoot() string {
	return ConfigOr("STORAGE_ROOT", "./storage")
}
