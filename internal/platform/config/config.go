package config

import (
	"os"
	"strconv"
	"time"
)

// Database holds one backing store's connection settings.
type Database struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

// SMTP configures the outbound mail sender. Empty host disables sending.
type SMTP struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Config captures everything the server reads from the environment so main
// stays lean.
type Config struct {
	Addr          string
	JWTSigningKey string
	TokenTTL      time.Duration

	Primary Database
	HR      Database
	ERP     Database

	// RedisURL enables token revocation on logout. Empty disables it.
	RedisURL string

	SMTP SMTP

	// UploadDir is where attachment files land; served under /uploads.
	UploadDir string

	// ReminderHour is the local hour (0-23) of the daily due-date sweep.
	ReminderHour int
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:          envOr("QMS_ADDR", ":8080"),
		JWTSigningKey: envOr("QMS_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenTTL:      envDuration("QMS_TOKEN_TTL", 8*time.Hour),

		Primary: database("QMS_DB_PRIMARY_URL"),
		HR:      database("QMS_DB_HR_URL"),
		ERP:     database("QMS_DB_ERP_URL"),

		RedisURL: os.Getenv("QMS_REDIS_URL"),

		SMTP: SMTP{
			Host: os.Getenv("QMS_SMTP_HOST"),
			Port: envInt("QMS_SMTP_PORT", 587),
			User: os.Getenv("QMS_SMTP_USER"),
			Pass: os.Getenv("QMS_SMTP_PASS"),
			From: envOr("QMS_SMTP_FROM", "calidad@planta.example"),
		},

		UploadDir:    envOr("QMS_UPLOAD_DIR", "./uploads"),
		ReminderHour: envInt("QMS_REMINDER_HOUR", 7),
	}
}

func database(urlVar string) Database {
	return Database{
		URL:          os.Getenv(urlVar),
		MaxOpenConns: envInt(urlVar+"_MAX_OPEN", 10),
		MaxIdleConns: envInt(urlVar+"_MAX_IDLE", 5),
		ConnLifetime: envDuration(urlVar+"_LIFETIME", 30*time.Minute),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
