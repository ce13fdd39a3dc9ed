// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Fields are populated from environment variables.
type Config struct {
	// Server settings
	Port int    // HTTP port to listen on
	Env  string // development, staging, production

	// Storage
	StorageBackend string // json, sqlite
	DatabasePath   string // Path to SQLite file (sqlite backend)
	TrackerPath    string // Per-season used-image tracker (json backend)
	StatePath      string // Message rotation index (json backend)
	MessagesPath   string // Ordered message list (json backend)

	// Images
	ImageRoot          string // Parent directory of the season folders
	OutputPath         string // Shared artifact overwritten on every image request
	OutputMaxDimension int    // Downscale the artifact to fit this many pixels; 0 keeps the original size
	ResetAfterDays     int    // Cooldown before an exhausted season pool is reset
	Timezone           string // IANA zone used for "today"; empty means local time

	// Authentication
	APIKey string // API key for the admin endpoints

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Storage backends
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Load reads configuration from environment variables.
// In development, it first loads from .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}

	// Server settings
	cfg.Port = getEnvInt("PORT", 8080)
	cfg.Env = getEnv("ENV", EnvDevelopment)

	// Storage
	cfg.StorageBackend = getEnv("STORAGE_BACKEND", BackendJSON)
	cfg.DatabasePath = getEnv("DATABASE_PATH", "./data/greetings.db")
	cfg.TrackerPath = getEnv("TRACKER_PATH", "seasons_tracker.json")
	cfg.StatePath = getEnv("STATE_PATH", "state.json")
	cfg.MessagesPath = getEnv("MESSAGES_PATH", "messages.json")

	// Images
	cfg.ImageRoot = getEnv("IMAGE_ROOT", "./")
	cfg.OutputPath = getEnv("OUTPUT_PATH", "output.jpg")
	cfg.OutputMaxDimension = getEnvInt("OUTPUT_MAX_DIMENSION", 0)
	cfg.ResetAfterDays = getEnvInt("RESET_AFTER_DAYS", 45)
	cfg.Timezone = getEnv("TIMEZONE", "")

	// Authentication
	cfg.APIKey = getEnv("API_KEY", "")

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// Valid
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, staging, production; got %q", c.Env))
	}

	switch c.StorageBackend {
	case BackendJSON:
		if c.TrackerPath == "" || c.StatePath == "" || c.MessagesPath == "" {
			errs = append(errs, errors.New("TRACKER_PATH, STATE_PATH and MESSAGES_PATH are required for the json backend"))
		}
	case BackendSQLite:
		if c.DatabasePath == "" {
			errs = append(errs, errors.New("DATABASE_PATH is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be one of: json, sqlite; got %q", c.StorageBackend))
	}

	if c.ImageRoot == "" {
		errs = append(errs, errors.New("IMAGE_ROOT is required"))
	}
	if c.OutputPath == "" {
		errs = append(errs, errors.New("OUTPUT_PATH is required"))
	}
	if c.OutputMaxDimension < 0 {
		errs = append(errs, fmt.Errorf("OUTPUT_MAX_DIMENSION must not be negative, got %d", c.OutputMaxDimension))
	}
	if c.ResetAfterDays < 1 {
		errs = append(errs, fmt.Errorf("RESET_AFTER_DAYS must be at least 1, got %d", c.ResetAfterDays))
	}

	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("TIMEZONE is not a valid IANA zone: %q", c.Timezone))
		}
	}

	// API key is required in production
	if c.Env == EnvProduction && c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required in production"))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.LogLevel))
	}

	switch c.LogFormat {
	case "json", "text":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, text; got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Location returns the time zone used to decide what "today" is.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// getEnv reads an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
