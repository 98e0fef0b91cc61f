// Package config loads and validates application configuration from
// environment variables, optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"].
	CORSOrigins []string

	// MaxBodyBytes caps request bodies. Full trip snapshots are sent on
	// every save, so the default is generous: 1 MiB.
	MaxBodyBytes int64

	// MigrateOnStart applies pending goose migrations before serving.
	MigrateOnStart bool
}

// SyncConfig configures the trip engine used by tripctl.
type SyncConfig struct {
	// APIURL is the base URL of the persistence API.
	APIURL string

	// SaveDebounce is the quiet period before a change is written.
	SaveDebounce time.Duration

	// SaveMaxRetries bounds retries of transient save failures.
	SaveMaxRetries uint64

	LogLevel string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// naming the first variable that does not parse.
func Load() (Config, error) {
	loadDotEnv()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.MaxBodyBytes, err = getInt64("MAX_BODY_BYTES", 1<<20); err != nil {
		return Config{}, err
	}
	if cfg.MigrateOnStart, err = getBool("MIGRATE_ON_START", false); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadSync reads the engine configuration. Every key has a default.
func LoadSync() (SyncConfig, error) {
	loadDotEnv()

	cfg := SyncConfig{
		APIURL:   strings.TrimRight(getEnv("TRIPBOARD_API_URL", "http://localhost:8080"), "/"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.SaveDebounce, err = getDuration("SAVE_DEBOUNCE", 2*time.Second); err != nil {
		return SyncConfig{}, err
	}
	retries, err := getInt64("SAVE_MAX_RETRIES", 3)
	if err != nil {
		return SyncConfig{}, err
	}
	if retries < 0 {
		return SyncConfig{}, fmt.Errorf("SAVE_MAX_RETRIES: must not be negative")
	}
	cfg.SaveMaxRetries = uint64(retries)
	return cfg, nil
}

// loadDotEnv seeds the environment from ./.env when present.
// Variables already set in the environment win.
func loadDotEnv() {
	_ = godotenv.Load()
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive", key)
	}
	return d, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
