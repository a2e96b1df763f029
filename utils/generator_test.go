package utils

import (
	"strings"
	"testing"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	hash := HashToken(token)
	if hash == token {
		t.Fatal("hash must differ from the token")
	}
	if !VerifyHashedToken(token, hash) {
		t.Fatal("token does not verify against its own hash")
	}
	if VerifyHashedToken("other-token", hash) {
		t.Fatal("foreign token verified against the hash")
	}
}

func TestSessionTokensAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		token, err := GenerateSessionToken()
		if err != nil {
			t.Fatalf("GenerateSessionToken: %v", err)
		}
		if seen[token] {
			t.Fatal("duplicate token generated")
		}
		seen[token] = true
	}
}

func TestGenerateVerificationCode(t *testing.T) {
	code, err := GenerateVerificationCode(6)
	if err != nil {
		t.Fatalf("GenerateVerificationCode: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("got %q, want 6 digits", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("non-digit %q in code %q", r, code)
		}
	}
}

func TestGenerateOneTimePassword(t *testing.T) {
	otp, err := GenerateOneTimePassword()
	if err != nil {
		t.Fatalf("GenerateOneTimePassword: %v", err)
	}
	if len(otp) != 8 {
		t.Fatalf("got %q, want 8 characters", otp)
	}
	// The alphabet excludes lookalikes (0/O, 1/I/L).
	for _, r := range otp {
		if strings.ContainsRune("01OIL", r) {
			t.Fatalf("ambiguous character %q in %q", r, otp)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	cases := []struct {
		email string
		want  bool
	}{
		{"marie@example.com", true},
		{"a@b.co", true},
		{"no-at-sign", false},
		{"trailing@", false},
		{"@leading.com", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsValidEmail(tc.email); got != tc.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tc.email, got, tc.want)
		}
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	cases := []struct {
		name     string
		password string
		want     bool
	}{
		{"valid", "Abcdef1!", true},
		{"too short", "Ab1!", false},
		{"too long", strings.Repeat("Ab1!", 10), false},
		{"no digit", "Abcdefg!", false},
		{"no uppercase", "abcdef1!", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, message := ValidatePasswordStrength(tc.password)
			if ok != tc.want {
				t.Fatalf("got %v (%q), want %v", ok, message, tc.want)
			}
			if !ok && message == "" {
				t.Fatal("rejection must carry a message")
			}
		})
	}
}
