package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	config "github.com/radiquiz/backend/configs"
)

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string
}

var EmailClient *BrevoService

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

func InitEmailService() {
	apiKey := config.Config("BREVO_API_KEY")
	senderEmail := config.Config("EMAIL_SENDER")
	senderName := config.ConfigOr("EMAIL_SENDER_NAME", "Radi Quiz")

	if apiKey == "" || senderEmail == "" {
		log.Println("⚠️ Email service not configured. Missing API key or sender address.")
		EmailClient = nil
		return
	}

	EmailClient = &BrevoService{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
	}
	log.Println("✅ Email service initialized successfully.")
}

func (s *BrevoService) send(toEmail, subject, htmlContent string) error {
	url := "https://api.brevo.com/v3/smtp/email"

	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}

	recipientName := toEmail[:strings.Index(toEmail, "@")]
	payload := brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": toEmail, "name": recipientName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %v", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("failed to send email via Brevo: %s", string(bodyBytes))
	}
	return nil
}

// SendEmail delivers a transactional email, logging failures instead of
// propagating them; callers fire it from a goroutine.
func SendEmail(toEmail, subject, htmlContent string) {
	if EmailClient == nil {
		log.Println("Email client not initialized, skipping email send.")
		return
	}

	if err := EmailClient.send(toEmail, subject, htmlContent); err != nil {
		log.Printf("🔥 Failed to send email to %s: %v", toEmail, err)
		return
	}
	log.Printf("✅ Email sent successfully to %s", toEmail)
}

// SendVerificationEmail mails the account confirmation code.
func SendVerificationEmail(toEmail, code string) {
	SendEmail(
		toEmail,
		"Radi Quiz - Vérification de votre compte",
		fmt.Sprintf(
			"<p>Bonjour,</p><p>Votre code de vérification Radi Quiz est : <b>%s</b></p>"+
				"<p>Ce code expire dans 15 minutes.</p><p>Merci,<br>L'équipe Radi Quiz</p>",
			code,
		),
	)
}

// SendPasswordResetEmail mails the one-time recovery password.
func SendPasswordResetEmail(toEmail, otp string, expiresAt time.Time) {
	SendEmail(
		toEmail,
		"Radi Quiz - Code de réinitialisation",
		fmt.Sprintf(
			"<p>Bonjour,</p><p>Utilisez le code à usage unique suivant pour réinitialiser votre mot de passe Radi Quiz : <b>%s</b></p>"+
				"<p>Ce code expire le %s (UTC).</p><p>Merci,<br>L'équipe Radi Quiz</p>",
			otp,
			expiresAt.UTC().Format("2006-01-02 15:04:05"),
		),
	)
}

// SendEmailChangeEmail mails the confirmation code to the new address.
func SendEmailChangeEmail(toEmail, code string) {
	SendEmail(
		toEmail,
		"Radi Quiz - Confirmation de votre nouvelle adresse",
		fmt.Sprintf(
			"<p>Bonjour,</p><p>Votre code de confirmation Radi Quiz est : <b>%s</b></p>"+
				"<p>Merci,<br>L'équipe Radi Quiz</p>",
			code,
		),
	)
}
