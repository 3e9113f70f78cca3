package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"
  allowed_origins:
    - "https://staging.clinicore.io"

email:
  service: "smtp"
  from: "noreply@clinicore.io"
  to: "team@clinicore.io"
  smtp_host: "mail.clinicore.io"
  smtp_port: 2525
  timeout_seconds: 45

recaptcha:
  secret_key: "test-secret"
  site_key: "test-site-key"

rate_limit:
  window_minutes: 30
  max_requests: 10
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, []string{"https://staging.clinicore.io"}, cfg.Server.AllowedOrigins)

	assert.Equal(t, "smtp", cfg.Email.Service)
	assert.Equal(t, "noreply@clinicore.io", cfg.Email.From)
	assert.Equal(t, "team@clinicore.io", cfg.Email.To)
	assert.Equal(t, "mail.clinicore.io", cfg.Email.SMTPHost)
	assert.Equal(t, 2525, cfg.Email.SMTPPort)
	assert.Equal(t, 45, cfg.Email.TimeoutSeconds)

	assert.Equal(t, "test-secret", cfg.Recaptcha.SecretKey)
	assert.Equal(t, "test-site-key", cfg.Recaptcha.SiteKey)

	assert.Equal(t, 30, cfg.RateLimit.WindowMinutes)
	assert.Equal(t, 10, cfg.RateLimit.MaxRequests)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Contains(t, cfg.Server.AllowedOrigins, "http://localhost:3000")
	assert.Contains(t, cfg.Server.AllowedOrigins, "https://clinicore.io")

	assert.Equal(t, "resend", cfg.Email.Service)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.Equal(t, "us-east-1", cfg.Email.SESRegion)

	assert.Equal(t, "https://www.google.com/recaptcha/api/siteverify", cfg.Recaptcha.VerifyURL)

	assert.Equal(t, 15, cfg.RateLimit.WindowMinutes)
	assert.Equal(t, 5, cfg.RateLimit.MaxRequests)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8181")
	t.Setenv("ALLOWED_ORIGINS", "https://one.example.com, https://two.example.com")
	t.Setenv("EMAIL_SERVICE", "GMAIL")
	t.Setenv("EMAIL_FROM", "contact@clinicore.io")
	t.Setenv("EMAIL_TO", "ops@clinicore.io")
	t.Setenv("GMAIL_USER", "contact@clinicore.io")
	t.Setenv("GMAIL_APP_PASSWORD", "app-password")
	t.Setenv("RECAPTCHA_SECRET_KEY", "env-secret")
	t.Setenv("RATE_LIMIT_WINDOW_MINUTES", "5")
	t.Setenv("RATE_LIMIT_MAX", "2")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, []string{"https://one.example.com", "https://two.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "gmail", cfg.Email.Service)
	assert.Equal(t, "contact@clinicore.io", cfg.Email.From)
	assert.Equal(t, "ops@clinicore.io", cfg.Email.To)
	assert.Equal(t, "app-password", cfg.Email.GmailAppPassword)
	assert.Equal(t, "env-secret", cfg.Recaptcha.SecretKey)
	assert.Equal(t, 5, cfg.RateLimit.WindowMinutes)
	assert.Equal(t, 2, cfg.RateLimit.MaxRequests)
}

func TestLoadInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server: [not a map"), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}
