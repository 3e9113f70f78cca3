package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/clinicore/contact-api/internal/config"
)

// ResendSender delivers mail through the Resend transactional email API.
type ResendSender struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewResendSender creates a Resend API sender.
func NewResendSender(cfg config.EmailConfig) *ResendSender {
	timeout := cfg.Timeout()
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ResendSender{
		apiKey:  cfg.ResendAPIKey,
		baseURL: "https://api.resend.com",
		client:  &http.Client{Timeout: timeout},
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (s *ResendSender) SetBaseURL(u string) { s.baseURL = u }

// Verify checks that an API key was configured. A missing key is a startup
// configuration error, not something to discover per request.
func (s *ResendSender) Verify(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("%w: RESEND_API_KEY is empty", ErrNotConfigured)
	}
	return nil
}

// Send delivers a single email through the Resend API.
func (s *ResendSender) Send(ctx context.Context, msg *Message) error {
	if s.apiKey == "" {
		return fmt.Errorf("%w: RESEND_API_KEY is empty", ErrNotConfigured)
	}

	payload := map[string]interface{}{
		"from":    fmt.Sprintf("%s <%s>", msg.FromName, msg.From),
		"to":      []string{msg.To},
		"subject": msg.Subject,
		"html":    msg.HTML,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: Resend returned %d", ErrAuthenticationFailed, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: Resend error %d: %s", ErrSendFailed, resp.StatusCode, string(raw))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && result.ID != "" {
		log.Printf("[Resend] Sent %q to %s (id: %s)", msg.Subject, msg.To, result.ID)
	}
	return nil
}
