package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// Redis-backed session storage. Sessions stay in memory when empty.
	RedisURL string

	// OIDC
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Session
	SessionSecret string // Used for signing cookies (min 32 chars)

	// Comma-separated e-mail addresses promoted to admin on login
	AdminEmails string

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// SMTP
	SMTPEnabled  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // "none", "tls" or "starttls"

	// Notifications
	EmailDelivery                 string // "outbox" (default) or "direct"
	EmailNotifyModeratorsOnSubmit bool
	EmailNotifyUserOnDecision     bool
	NotifyWorkerInterval          time.Duration
	NotifyMaxAttempts             int

	// Scoring and moderation
	NormalizationMode  string // none, employees, revenue
	GateBlockThreshold int
	GateAttentionLimit int

	// Site Branding
	SiteTitle   string // env: SITE_TITLE, default: "Rotten Company"
	SiteTagline string // env: SITE_TAGLINE
	SiteFooter  string // env: SITE_FOOTER
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:              getEnv("ENV", "development"),
		ServerAddr:       getEnv("SERVER_ADDR", ":3000"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL:      getEnv("DATABASE_URL", "postgres://localhost:5432/rottencompany?sslmode=disable"),
		RedisURL:         getEnv("REDIS_URL", ""),
		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),
		SessionSecret:    getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		CORSOrigins:      getEnv("CORS_ORIGINS", ""),
		AdminEmails:      getEnv("ADMIN_EMAILS", ""),

		SMTPEnabled:  getEnv("SMTP_ENABLED", "") != "",
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Rotten Company"),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),

		EmailDelivery:                 getEnv("EMAIL_DELIVERY", DeliveryOutbox),
		EmailNotifyModeratorsOnSubmit: getEnvBool("EMAIL_NOTIFY_MODERATORS_ON_SUBMIT", true),
		EmailNotifyUserOnDecision:     getEnvBool("EMAIL_NOTIFY_USER_ON_DECISION", true),
		NotifyWorkerInterval:          getEnvDuration("NOTIFY_WORKER_INTERVAL", 15*time.Second),
		NotifyMaxAttempts:             getEnvInt("NOTIFY_MAX_ATTEMPTS", 5),

		NormalizationMode:  getEnv("NORMALIZATION_MODE", "none"),
		GateBlockThreshold: getEnvInt("GATE_BLOCK_THRESHOLD", 1),
		GateAttentionLimit: getEnvInt("GATE_ATTENTION_LIMIT", 10),

		SiteTitle:   getEnv("SITE_TITLE", "Rotten Company"),
		SiteTagline: getEnv("SITE_TAGLINE", "Evidence-backed ratings for companies and the people who run them"),
		SiteFooter:  getEnv("SITE_FOOTER", "Rotten Company - every score is backed by moderated evidence"),
	}
}

// Email delivery modes.
const (
	DeliveryOutbox = "outbox"
	DeliveryDirect = "direct"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if SMTP is switched on and minimally configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPEnabled && c.SMTPHost != "" && c.SMTPFrom != ""
}

// UsesOutbox returns true if notifications are queued instead of sent inline.
func (c *Config) UsesOutbox() bool {
	return c.EmailDelivery != DeliveryDirect
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (c *Config) IsAdminEmail(email string) bool {
	if email == "" {
		return false
	}
	for _, e := range strings.Split(c.AdminEmails, ",") {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}
