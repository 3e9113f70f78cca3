// Package recaptcha verifies Google reCAPTCHA challenge tokens against the
// siteverify endpoint. The client never returns a transport error to its
// caller: any failure to obtain a well-formed verdict is reported as a
// verification failure with a synthetic reason code.
package recaptcha

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clinicore/contact-api/internal/config"
)

// Reason codes the client synthesizes locally (Google's own error codes are
// passed through verbatim).
const (
	ReasonMissingToken  = "missing-input-response"
	ReasonRequestFailed = "verification-request-failed"
)

// Result is the structured outcome of one verification call.
type Result struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Client calls the reCAPTCHA verification service.
type Client struct {
	secret    string
	verifyURL string
	client    *http.Client
}

// NewClient creates a verification client from the reCAPTCHA config.
func NewClient(cfg config.RecaptchaConfig) *Client {
	timeout := cfg.Timeout()
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		secret:    cfg.SecretKey,
		verifyURL: cfg.VerifyURL,
		client:    &http.Client{Timeout: timeout},
	}
}

// Verify checks one challenge token. An empty token fails immediately without
// an outbound call. No retries: a transient failure is this call's outcome.
func (c *Client) Verify(ctx context.Context, token string) Result {
	if strings.TrimSpace(token) == "" {
		return Result{Success: false, ErrorCodes: []string{ReasonMissingToken}}
	}

	body := url.Values{
		"secret":   {c.secret},
		"response": {token},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(body.Encode()))
	if err != nil {
		log.Printf("[reCAPTCHA] Failed to build verify request: %v", err)
		return Result{Success: false, ErrorCodes: []string{ReasonRequestFailed}}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[reCAPTCHA] Verify request failed: %v", err)
		return Result{Success: false, ErrorCodes: []string{ReasonRequestFailed}}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[reCAPTCHA] Verify returned status %d: %s", resp.StatusCode, string(raw))
		return Result{Success: false, ErrorCodes: []string{ReasonRequestFailed}}
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("[reCAPTCHA] Malformed verify response: %v", err)
		return Result{Success: false, ErrorCodes: []string{ReasonRequestFailed}}
	}

	return result
}
