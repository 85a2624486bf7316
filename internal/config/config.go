package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         int
	DevMode      bool
	DatabasePath string
	LogLevel     string

	// Symbols tracked by the background refresh job
	Symbols     []string
	IndexSymbol string

	// Simulation defaults, overridable per request
	Trials       int
	HorizonYears int
	Workers      int
	RiskFreeRate *float64

	// Cron expression for the valuation refresh job (with seconds)
	RefreshSchedule string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvAsInt("PORT", 8090),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		DatabasePath:    getEnv("DATABASE_PATH", "./data/intrinsic.db"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Symbols:         getEnvAsList("TRACKED_SYMBOLS"),
		IndexSymbol:     getEnv("INDEX_SYMBOL", "^GSPC"),
		Trials:          getEnvAsInt("SIM_TRIALS", 10000),
		HorizonYears:    getEnvAsInt("SIM_HORIZON_YEARS", 5),
		Workers:         getEnvAsInt("SIM_WORKERS", 0),
		RiskFreeRate:    getEnvAsFloatPtr("RISK_FREE_RATE"),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 0 6 * * MON-FRI"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.Trials <= 0 {
		return fmt.Errorf("SIM_TRIALS must be positive")
	}
	if c.HorizonYears <= 0 {
		return fmt.Errorf("SIM_HORIZON_YEARS must be positive")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloatPtr(key string) *float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return &floatVal
		}
	}
	return nil
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, strings.ToUpper(trimmed))
		}
	}
	return out
}
