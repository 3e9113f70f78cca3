package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application. It is read once at
// startup and treated as immutable afterwards.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Email     EmailConfig     `yaml:"email"`
	Recaptcha RecaptchaConfig `yaml:"recaptcha"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Redis     RedisConfig     `yaml:"redis"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	Environment    string   `yaml:"environment"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// EmailConfig holds delivery backend selection and credentials.
// Service selects the backend: "resend", "gmail", "smtp" or "ses".
// Credentials are not validated here; a misconfigured backend surfaces
// when the dispatcher first uses it.
type EmailConfig struct {
	Service string `yaml:"service"`
	From    string `yaml:"from"`
	To      string `yaml:"to"`

	ResendAPIKey string `yaml:"resend_api_key"`

	GmailUser        string `yaml:"gmail_user"`
	GmailAppPassword string `yaml:"gmail_app_password"`

	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPSecure   bool   `yaml:"smtp_secure"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`

	SESAccessKey string `yaml:"ses_access_key"`
	SESSecretKey string `yaml:"ses_secret_key"`
	SESRegion    string `yaml:"ses_region"`

	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the configured send timeout as a duration
func (c EmailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RecaptchaConfig holds Google reCAPTCHA verification settings
type RecaptchaConfig struct {
	SecretKey      string `yaml:"secret_key"`
	SiteKey        string `yaml:"site_key"`
	VerifyURL      string `yaml:"verify_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured verification timeout as a duration
func (c RecaptchaConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RateLimitConfig holds per-IP submission limits
type RateLimitConfig struct {
	WindowMinutes int `yaml:"window_minutes"`
	MaxRequests   int `yaml:"max_requests"`
}

// Window returns the rate limit window as a duration
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowMinutes) * time.Minute
}

// RedisConfig holds the optional Redis connection for distributed rate limiting
type RedisConfig struct {
	URL string `yaml:"url"`
}

// Load reads and parses the configuration file. A missing file is not an
// error; all settings can come from the environment.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = "development"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"https://clinicore.io",
		}
	}
	if cfg.Email.Service == "" {
		cfg.Email.Service = "resend"
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Email.SESRegion == "" {
		cfg.Email.SESRegion = "us-east-1"
	}
	if cfg.Email.TimeoutSeconds == 0 {
		cfg.Email.TimeoutSeconds = 30
	}
	if cfg.Recaptcha.VerifyURL == "" {
		cfg.Recaptcha.VerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	}
	if cfg.Recaptcha.TimeoutSeconds == 0 {
		cfg.Recaptcha.TimeoutSeconds = 10
	}
	if cfg.RateLimit.WindowMinutes == 0 {
		cfg.RateLimit.WindowMinutes = 15
	}
	if cfg.RateLimit.MaxRequests == 0 {
		cfg.RateLimit.MaxRequests = 5
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		cfg.Server.Environment = env
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		var parsed []string
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				parsed = append(parsed, o)
			}
		}
		if len(parsed) > 0 {
			cfg.Server.AllowedOrigins = parsed
		}
	}
	if v := os.Getenv("EMAIL_SERVICE"); v != "" {
		cfg.Email.Service = strings.ToLower(v)
	}
	if v := os.Getenv("EMAIL_FROM"); v != "" {
		cfg.Email.From = v
	}
	if v := os.Getenv("EMAIL_TO"); v != "" {
		cfg.Email.To = v
	}
	if v := os.Getenv("RESEND_API_KEY"); v != "" {
		cfg.Email.ResendAPIKey = v
	}
	if v := os.Getenv("GMAIL_USER"); v != "" {
		cfg.Email.GmailUser = v
	}
	if v := os.Getenv("GMAIL_APP_PASSWORD"); v != "" {
		cfg.Email.GmailAppPassword = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Email.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Email.SMTPPort = p
		}
	}
	if v := os.Getenv("SMTP_SECURE"); v != "" {
		cfg.Email.SMTPSecure = v == "true" || v == "1"
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.Email.SMTPUser = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.SMTPPassword = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.Email.SESAccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.Email.SESSecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.Email.SESRegion = v
	}
	if v := os.Getenv("RECAPTCHA_SECRET_KEY"); v != "" {
		cfg.Recaptcha.SecretKey = v
	}
	if v := os.Getenv("RECAPTCHA_SITE_KEY"); v != "" {
		cfg.Recaptcha.SiteKey = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("RATE_LIMIT_WINDOW_MINUTES"); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m > 0 {
			cfg.RateLimit.WindowMinutes = m
		}
	}
	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m > 0 {
			cfg.RateLimit.MaxRequests = m
		}
	}

	return cfg, nil
}
