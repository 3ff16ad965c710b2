package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// CRM
	HubSpot HubSpotConfig

	// Business rules
	Business BusinessConfig

	// Scheduler
	SyncSchedule      string
	ReconcileSchedule string

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	QueueTTL time.Duration
}

// DatabaseConfig holds database configuration.
// URL scheme selects the driver: postgres:// or postgresql:// use pgx, sqlite:// uses modernc sqlite.
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// HubSpotConfig holds CRM API configuration
type HubSpotConfig struct {
	AccessToken string
	BaseURL     string
	RateLimit   int // requests per second
	PageSize    int
}

// BusinessConfig holds the knobs shared by the classification core
type BusinessConfig struct {
	UTCOffsetHours   int    // fixed civil offset used for business days and fiscal quarters
	OwnerEmailDomain string // sender domain that makes a generic email "outbound"
	RulesFile        string // optional YAML override for rule thresholds
}

// Location returns the fixed-offset zone the business operates in
func (b BusinessConfig) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", b.UTCOffsetHours), b.UTCOffsetHours*3600)
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			QueueTTL: getEnvAsDuration("REDIS_QUEUE_TTL", "2m"),
		},

		HubSpot: HubSpotConfig{
			AccessToken: getEnv("HUBSPOT_ACCESS_TOKEN", ""),
			BaseURL:     strings.TrimRight(getEnv("HUBSPOT_BASE_URL", "https://api.hubapi.com"), "/"),
			RateLimit:   getEnvAsInt("HUBSPOT_RATE_LIMIT", 10),
			PageSize:    getEnvAsInt("HUBSPOT_PAGE_SIZE", 100),
		},

		Business: BusinessConfig{
			UTCOffsetHours:   getEnvAsInt("BUSINESS_UTC_OFFSET_HOURS", -5),
			OwnerEmailDomain: strings.ToLower(getEnv("OWNER_EMAIL_DOMAIN", "")),
			RulesFile:        getEnv("RULES_FILE", ""),
		},

		SyncSchedule:      getEnv("SYNC_SCHEDULE", "0 */30 * * * *"),
		ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "0 5 * * * *"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Business.UTCOffsetHours < -12 || c.Business.UTCOffsetHours > 14 {
		return fmt.Errorf("BUSINESS_UTC_OFFSET_HOURS must be within [-12, 14], got %d", c.Business.UTCOffsetHours)
	}

	if c.HubSpot.RateLimit <= 0 {
		return fmt.Errorf("HUBSPOT_RATE_LIMIT must be > 0")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
