package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Env       string
	Port      string
	JWTSecret string
	Database  DatabaseConfig
	Remote    RemoteConfig
	Sync      SyncConfig
}

// DatabaseConfig holds local database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// RemoteConfig holds remote document store configuration
type RemoteConfig struct {
	URL      string // empty disables sync entirely (permanent offline mode)
	Database string
	Username string
	Password string
	BlobURL  string // base URL of the blob store; defaults to URL + "/blobs"
}

// SyncConfig holds synchronization tuning
type SyncConfig struct {
	IntervalSeconds    int   // periodic drain/pull interval
	PullPageSize       int   // delta pull page size
	PullMaxPages       int   // safety valve per pull call
	CursorSkewSeconds  int   // clock-drift buffer subtracted from the cursor
	MaxRejectedRetries int   // rejected items are parked as dead after this many attempts
	AttachmentMaxBytes int64 // blob download ceiling
	HealthIntervalSecs int   // connectivity probe interval
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	remoteURL := os.Getenv("REMOTE_URL")
	blobURL := os.Getenv("REMOTE_BLOB_URL")
	if blobURL == "" && remoteURL != "" {
		blobURL = remoteURL + "/blobs"
	}

	return &Config{
		Env:       getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "3001"),
		JWTSecret: jwtSecret,
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "fieldops"),
		},
		Remote: RemoteConfig{
			URL:      remoteURL,
			Database: getEnv("REMOTE_DATABASE", "fieldops"),
			Username: os.Getenv("REMOTE_USERNAME"),
			Password: os.Getenv("REMOTE_PASSWORD"),
			BlobURL:  blobURL,
		},
		Sync: SyncConfig{
			IntervalSeconds:    getEnvInt("SYNC_INTERVAL_SECONDS", 60),
			PullPageSize:       getEnvInt("SYNC_PULL_PAGE_SIZE", 50),
			PullMaxPages:       getEnvInt("SYNC_PULL_MAX_PAGES", 40),
			CursorSkewSeconds:  getEnvInt("SYNC_CURSOR_SKEW_SECONDS", 60),
			MaxRejectedRetries: getEnvInt("SYNC_MAX_REJECTED_RETRIES", 5),
			AttachmentMaxBytes: int64(getEnvInt("ATTACHMENT_MAX_BYTES", 5*1024*1024)),
			HealthIntervalSecs: getEnvInt("SYNC_HEALTH_INTERVAL_SECONDS", 30),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
