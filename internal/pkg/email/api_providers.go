// internal/pkg/email/api_providers.go
package email

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/your-org/foodiehub-backend/internal/config"
)

const (
	resendBaseURL   = "https://api.resend.com"
	sendGridBaseURL = "https://api.sendgrid.com"
)

// Resend API structures
type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// SendGrid API structures
type sendGridRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
	ReplyTo          *sendGridAddress          `json:"reply_to,omitempty"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func newAPIClient(cfg config.EmailConfig, defaultBaseURL string) *resty.Client {
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetAuthToken(cfg.APIKey).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
}

// ResendSender sends mail through the Resend HTTP API
type ResendSender struct {
	cfg    config.EmailConfig
	client *resty.Client
}

// NewResendSender creates a Resend sender
func NewResendSender(cfg config.EmailConfig) (*ResendSender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("resend API key not configured")
	}
	return &ResendSender{cfg: cfg, client: newAPIClient(cfg, resendBaseURL)}, nil
}

func (s *ResendSender) Send(ctx context.Context, email *Email) error {
	body := resendRequest{
		From:    formatFrom(s.cfg),
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTMLContent,
		Text:    email.TextContent,
		ReplyTo: s.cfg.ReplyTo,
	}

	resp, err := s.client.R().SetContext(ctx).SetBody(body).Post("/emails")
	if err != nil {
		return fmt.Errorf("failed to send Resend request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("resend API returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// SendGridSender sends mail through the SendGrid v3 API
type SendGridSender struct {
	cfg    config.EmailConfig
	client *resty.Client
}

// NewSendGridSender creates a SendGrid sender
func NewSendGridSender(cfg config.EmailConfig) (*SendGridSender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("sendgrid API key not configured")
	}
	return &SendGridSender{cfg: cfg, client: newAPIClient(cfg, sendGridBaseURL)}, nil
}

func (s *SendGridSender) Send(ctx context.Context, email *Email) error {
	to := make([]sendGridAddress, len(email.To))
	for i, addr := range email.To {
		to[i] = sendGridAddress{Email: addr}
	}

	contentType := "text/plain"
	if email.IsHTML() {
		contentType = "text/html"
	}

	body := sendGridRequest{
		Personalizations: []sendGridPersonalization{{To: to}},
		From:             sendGridAddress{Email: s.cfg.FromEmail, Name: s.cfg.FromName},
		Subject:          email.Subject,
		Content:          []sendGridContent{{Type: contentType, Value: email.Body()}},
	}
	if s.cfg.ReplyTo != "" {
		body.ReplyTo = &sendGridAddress{Email: s.cfg.ReplyTo}
	}

	resp, err := s.client.R().SetContext(ctx).SetBody(body).Post("/v3/mail/send")
	if err != nil {
		return fmt.Errorf("failed to send SendGrid request: %w", err)
	}
	if resp.StatusCode() != 202 && resp.StatusCode() != 200 {
		return fmt.Errorf("sendgrid API returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
