package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the pipeline. Environment variables are
// read here and nowhere else.
type Config struct {
	Env string // development, staging, production

	// Input
	MDDir         string // directory of analyst-report markdown files
	WatchlistPath string // covered-stock CSV (代號,名稱)

	// Output
	CSVDir      string
	KeepHistory bool   // retain a timestamped copy next to the latest file
	MDLinkBase  string // optional base URL for the export's markdown links

	// Consensus
	FirstYear         int    // first calendar year of the estimate columns
	QualityPolicyPath string // optional YAML weighting policy

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, after loading a .env
// file if one is found.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		MDDir:         getEnv("MD_DIR", "data/md"),
		WatchlistPath: getEnv("WATCHLIST_PATH", "config/watchlist.csv"),

		CSVDir:      getEnv("CSV_DIR", "data/csv"),
		KeepHistory: getEnvAsBool("CSV_KEEP_HISTORY", true),
		MDLinkBase:  getEnv("MD_LINK_BASE", ""),

		FirstYear:         getEnvAsInt("CSV_FIRST_YEAR", 2025),
		QualityPolicyPath: getEnv("QUALITY_CONFIG", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.MDDir == "" {
		return fmt.Errorf("MD_DIR is required")
	}
	if c.CSVDir == "" {
		return fmt.Errorf("CSV_DIR is required")
	}
	if c.WatchlistPath == "" {
		return fmt.Errorf("WATCHLIST_PATH is required")
	}

	if c.FirstYear < 1000 || c.FirstYear > 9999 {
		return fmt.Errorf("CSV_FIRST_YEAR must be a 4-digit year, got %d", c.FirstYear)
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
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
