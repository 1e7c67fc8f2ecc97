package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// EmailService sends transactional mail through an HTTP mail API.
type EmailService struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
}

// NewEmailService creates a new EmailService. The HTTP client carries a
// timeout so a slow provider cannot wedge the calling request.
func NewEmailService(apiURL, apiKey, from string) *EmailService {
	return &EmailService{
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type mailMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (s *EmailService) send(to, subject, text string) error {
	if s.apiURL == "" {
		log.Printf("[Mail] API not configured, skipping send to %s: %s", to, subject)
		return nil
	}

	body, err := json.Marshal(mailMessage{
		From:    s.from,
		To:      to,
		Subject: subject,
		Text:    text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[Mail] Failed to send to %s: %v", to, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[Mail] Unexpected status sending to %s: %d", to, resp.StatusCode)
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}

	return nil
}

// SendOtpEmail delivers a login code. Unlike the notification mails, a
// failure here must reach the caller: the user has no code otherwise.
func (s *EmailService) SendOtpEmail(email, code string) error {
	if s.apiURL == "" {
		// Development fallback so the flow stays testable without a provider.
		log.Printf("[Mail] API not configured, OTP for %s: %s", email, code)
		return nil
	}
	text := fmt.Sprintf("Your MessMate login code is %s. It expires in 5 minutes.", code)
	return s.send(email, "Your MessMate login code", text)
}

// SendApprovalEmail notifies an applicant that their mess was approved.
func (s *EmailService) SendApprovalEmail(email, name string) error {
	text := fmt.Sprintf(
		"Hi %s,\n\nYour vendor application has been approved. You can now log in with your email using an OTP and publish your menu.\n\nWelcome aboard!",
		name,
	)
	return s.send(email, "Your vendor application was approved", text)
}

// SendRejectionEmail notifies an applicant that their application was
// rejected, including the admin's reason.
func (s *EmailService) SendRejectionEmail(email, name, reason string) error {
	text := fmt.Sprintf(
		"Hi %s,\n\nWe are sorry to inform you that your vendor application was rejected.\n\nReason: %s\n\nYou are welcome to apply again once the issue is resolved.",
		name, reason,
	)
	return s.send(email, "Update on your vendor application", text)
}
