package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Link source kinds.
const (
	SourceSheets   = "sheets"
	SourcePostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr  string
	BaseURL     string // Public origin for short URLs. Empty means derive it from the request.
	CORSOrigins string // Comma-separated allowed origins
	RateLimit   int    // Requests per minute per IP, 0 disables the limiter

	// TLS
	TLSCertFile string
	TLSKeyFile  string

	// Redirects
	FallbackBaseURL       string // env: LINKS_FALLBACK_BASE
	FallbackOnSourceError bool   // Redirect to the fallback instead of failing when the source is down

	// Link directory
	LinkSource            string // "sheets" or "postgres"
	DirectoryTTL          time.Duration
	DirectoryFetchTimeout time.Duration
	DirectoryWarmInterval time.Duration // 0 disables the background warmer

	// Google Sheets
	SheetsID                 string
	SheetsRange              string
	ServiceAccountEmail      string
	ServiceAccountPrivateKey string

	// Database (postgres link source)
	DatabaseURL string

	// Redis (shared snapshot store and limiter storage)
	RedisURL string

	// QR codes
	BrandText    string  // env: QR_BRAND_TEXT
	MinLightness float64 // env: QR_MIN_LIGHTNESS, percent
	MaxLightness float64 // env: QR_MAX_LIGHTNESS, percent
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		BaseURL:     strings.TrimRight(getEnv("BASE_URL", ""), "/"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		RateLimit:   getEnvInt("RATE_LIMIT_MAX", 100),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		FallbackBaseURL:       getEnv("LINKS_FALLBACK_BASE", "https://delesslin.studio"),
		FallbackOnSourceError: getEnvBool("FALLBACK_ON_SOURCE_ERROR", false),

		LinkSource:            strings.ToLower(getEnv("LINK_SOURCE", SourceSheets)),
		DirectoryTTL:          getEnvDuration("DIRECTORY_TTL", 60*time.Second),
		DirectoryFetchTimeout: getEnvDuration("DIRECTORY_FETCH_TIMEOUT", 8*time.Second),
		DirectoryWarmInterval: getEnvDuration("DIRECTORY_WARM_INTERVAL", 0),

		SheetsID:                 getEnv("GOOGLE_SHEETS_ID", ""),
		SheetsRange:              getEnv("GOOGLE_SHEETS_RANGE", "Links!A:B"),
		ServiceAccountEmail:      getEnv("GOOGLE_SERVICE_ACCOUNT_EMAIL", ""),
		ServiceAccountPrivateKey: normalizePrivateKey(getEnv("GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY", "")),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		BrandText:    getEnv("QR_BRAND_TEXT", "DELESSLIN"),
		MinLightness: getEnvFloat("QR_MIN_LIGHTNESS", 87),
		MaxLightness: getEnvFloat("QR_MAX_LIGHTNESS", 97),
	}
}

// Validate reports configuration that would keep the service from resolving links.
func (c *Config) Validate() error {
	var errs []error

	switch c.LinkSource {
	case SourceSheets:
		if c.SheetsID == "" {
			errs = append(errs, errors.New("GOOGLE_SHEETS_ID is required for the sheets link source"))
		}
		if c.ServiceAccountEmail == "" || c.ServiceAccountPrivateKey == "" {
			errs = append(errs, errors.New("GOOGLE_SERVICE_ACCOUNT_EMAIL and GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY are required for the sheets link source"))
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres link source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LINK_SOURCE %q", c.LinkSource))
	}

	if c.MinLightness < 0 || c.MaxLightness > 100 || c.MinLightness > c.MaxLightness {
		errs = append(errs, fmt.Errorf("invalid QR lightness band [%v, %v]", c.MinLightness, c.MaxLightness))
	}
	if c.DirectoryTTL <= 0 {
		errs = append(errs, errors.New("DIRECTORY_TTL must be positive"))
	}

	return errors.Join(errs...)
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// TLSEnabled returns true when both a certificate and key are configured.
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// normalizePrivateKey turns escaped newlines back into real ones. Hosting
// platforms usually store multiline PEM secrets with literal "\n".
func normalizePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}
