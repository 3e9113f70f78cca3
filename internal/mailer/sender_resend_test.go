package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/contact-api/internal/config"
)

func testEmailConfig() config.EmailConfig {
	return config.EmailConfig{
		Service:      "resend",
		From:         "noreply@clinicore.io",
		To:           "team@clinicore.io",
		ResendAPIKey: "re_test_key",
		SMTPHost:     "mail.clinicore.io",
		SMTPPort:     587,
	}
}

func TestResendSend(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/emails", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(`{"id":"msg-1"}`))
	}))
	defer srv.Close()

	sender := NewResendSender(testEmailConfig())
	sender.SetBaseURL(srv.URL)

	msg := &Message{From: "noreply@clinicore.io", FromName: "Clinicore", To: "ana@example.com", Subject: "Hello", HTML: "<p>hi</p>"}
	require.NoError(t, sender.Send(context.Background(), msg))

	assert.Equal(t, "Bearer re_test_key", gotAuth)
	assert.Equal(t, "Clinicore <noreply@clinicore.io>", gotPayload["from"])
	assert.Equal(t, []interface{}{"ana@example.com"}, gotPayload["to"])
	assert.Equal(t, "Hello", gotPayload["subject"])
	assert.Equal(t, "<p>hi</p>", gotPayload["html"])
}

func TestResendMissingKeyIsNotConfigured(t *testing.T) {
	cfg := testEmailConfig()
	cfg.ResendAPIKey = ""
	sender := NewResendSender(cfg)

	err := sender.Verify(context.Background())
	assert.True(t, errors.Is(err, ErrNotConfigured))

	err = sender.Send(context.Background(), &Message{To: "ana@example.com"})
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestResendAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"API key is invalid"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	sender := NewResendSender(testEmailConfig())
	sender.SetBaseURL(srv.URL)

	err := sender.Send(context.Background(), &Message{To: "ana@example.com"})
	assert.True(t, errors.Is(err, ErrAuthenticationFailed))
}

func TestResendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid to address"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	sender := NewResendSender(testEmailConfig())
	sender.SetBaseURL(srv.URL)

	err := sender.Send(context.Background(), &Message{To: "bad"})
	assert.True(t, errors.Is(err, ErrSendFailed))
}

func TestResendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	sender := NewResendSender(testEmailConfig())
	sender.SetBaseURL(srv.URL)

	err := sender.Send(context.Background(), &Message{To: "ana@example.com"})
	assert.True(t, errors.Is(err, ErrTransportUnavailable))
}

func TestSMTPSenderMissingHost(t *testing.T) {
	cfg := testEmailConfig()
	cfg.SMTPHost = ""
	sender := NewSMTPSender(cfg)

	err := sender.Verify(context.Background())
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestSMTPSenderUnreachable(t *testing.T) {
	cfg := testEmailConfig()
	cfg.SMTPHost = "127.0.0.1"
	cfg.SMTPPort = 1 // nothing listens here
	cfg.TimeoutSeconds = 1
	sender := NewSMTPSender(cfg)

	err := sender.Verify(context.Background())
	assert.True(t, errors.Is(err, ErrTransportUnavailable))
}

func TestBuildMIME(t *testing.T) {
	msg := &Message{
		From:     "noreply@clinicore.io",
		FromName: "Clinicore",
		To:       "ana@example.com",
		Subject:  "Hello",
		HTML:     "<p>hi</p>",
	}
	raw := string(buildMIME(msg))

	assert.Contains(t, raw, "From: Clinicore <noreply@clinicore.io>\r\n")
	assert.Contains(t, raw, "To: ana@example.com\r\n")
	assert.Contains(t, raw, "Subject: Hello\r\n")
	assert.Contains(t, raw, "Content-Type: text/html; charset=UTF-8\r\n")
	assert.Contains(t, raw, "<p>hi</p>")
}
