package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	// APIBaseURL is the root of the remote REST API, e.g. https://api.fitspark.app/
	APIBaseURL string

	// CookieSecret signs the session and flash cookies.
	CookieSecret string
	// CSRFKey is the 32-byte key for form CSRF tokens.
	CSRFKey string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTLPEndpoint string

	CacheTTL time.Duration
	DraftTTL time.Duration
}

// Load reads the process environment. A .env file in the working directory is
// loaded first when present; variables already set win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:           getEnv("APP_ENV", "dev"),
		Port:          getEnvInt("PORT", 3000),
		APIBaseURL:    normalizeBaseURL(getEnv("API_BASE_URL", "http://localhost:8000/")),
		CookieSecret:  getEnv("COOKIE_SECRET", "dev-cookie-secret-change-me-0123456789"),
		CSRFKey:       getEnv("CSRF_KEY", "dev-csrf-key-change-me-0123456789ab"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		OTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 30)) * time.Second,
		DraftTTL:      time.Duration(getEnvInt("DRAFT_TTL_MINUTES", 60)) * time.Minute,
	}
}

// Validate rejects configurations that must not reach production.
func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.IsProd() {
		if strings.HasPrefix(c.CookieSecret, "dev-") {
			return fmt.Errorf("COOKIE_SECRET must be set in prod")
		}
		if strings.HasPrefix(c.CSRFKey, "dev-") {
			return fmt.Errorf("CSRF_KEY must be set in prod")
		}
	}
	if len(c.CSRFKey) < 32 {
		return fmt.Errorf("CSRF_KEY must be at least 32 bytes")
	}
	return nil
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func normalizeBaseURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}
