package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for the raw document archive.
// An empty Endpoint disables archiving.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether an archive endpoint is configured.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// ETAConfig holds the tax authority endpoints, client credentials and the
// pacing knobs of the sync engine.
type ETAConfig struct {
	AuthURL        string
	APIURL         string
	ClientID       string
	ClientSecret   string
	Scope          string
	HTTPTimeoutSec int
	PageSize       int
	WindowDays     int
	FetchDelayMs   int
	WindowDelayMs  int
}

// HTTPTimeout returns the per-request timeout for authority calls.
func (c ETAConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// FetchDelay is the pause after every document fetch.
func (c ETAConfig) FetchDelay() time.Duration {
	return time.Duration(c.FetchDelayMs) * time.Millisecond
}

// WindowDelay is the pause between two date windows.
func (c ETAConfig) WindowDelay() time.Duration {
	return time.Duration(c.WindowDelayMs) * time.Millisecond
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	TimeZone string
	LogLevel string
	Database DatabaseConfig
	MinIO    MinIOConfig
	ETA      ETAConfig
}

// Location resolves TimeZone, falling back to UTC when it is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		TimeZone: getEnv("APP_TIMEZONE", "UTC"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		ETA: ETAConfig{
			AuthURL:        getEnv("ETA_AUTH_URL", ""),
			APIURL:         getEnv("ETA_API_URL", ""),
			ClientID:       getEnv("ETA_CLIENT_ID", ""),
			ClientSecret:   getEnv("ETA_CLIENT_SECRET", ""),
			Scope:          getEnv("ETA_SCOPE", "InvoicingAPI"),
			HTTPTimeoutSec: getEnvInt("ETA_HTTP_TIMEOUT_SEC", 30),
			PageSize:       getEnvInt("ETA_PAGE_SIZE", 50),
			WindowDays:     getEnvInt("ETA_WINDOW_DAYS", 30),
			FetchDelayMs:   getEnvInt("ETA_FETCH_DELAY_MS", 100),
			WindowDelayMs:  getEnvInt("ETA_WINDOW_DELAY_MS", 1000),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
