package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"math/big"
	"regexp"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// otpAlphabet avoids ambiguous characters (0/O, 1/I).
const otpAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateSessionToken returns an opaque url-safe token for session cookies.
func GenerateSessionToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// HashToken returns the sha256 hex digest stored in place of a secret.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// VerifyHashedToken compares a plain secret against its stored digest in
// constant time.
func VerifyHashedToken(secret, storedHash string) bool {
	computed := HashToken(secret)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

// GenerateVerificationCode returns a numeric code of the given length.
func GenerateVerificationCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

// GenerateOneTimePassword returns an 8-character recovery password.
func GenerateOneTimePassword() (string, error) {
	chars := make([]byte, 8)
	for i := range chars {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(otpAlphabet))))
		if err != nil {
			return "", err
		}
		chars[i] = otpAlphabet[n.Int64()]
	}
	return string(chars), nil
}

// IsValidEmail reports whether value looks like an email address.
func IsValidEmail(value string) bool {
	return emailRegex.MatchString(value)
}

// ValidatePasswordStrength enforces the account password policy: 8-30
// characters with at least one lowercase, uppercase, digit, and special
// character.
func ValidatePasswordStrength(password string) (bool, string) {
	if len(password) < 8 || len(password) > 30 {
		return false, "Password must be 8-30 characters with upper, lower, digit, and special characters."
	}
	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit || !hasSpecial {
		return false, "Password must be 8-30 characters with upper, lower, digit, and special characters."
	}
	return true, ""
}
