package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	CAL       CALConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// CALConfig holds upstream price source configuration
type CALConfig struct {
	BaseURL    string
	ProbeDate  string        // known-good trading date used for fund discovery
	RetryDelay time.Duration // base delay between retry attempts
	Cooldown   time.Duration // pause after each successful fetch
}

// SchedulerConfig holds the daily refresh configuration
type SchedulerConfig struct {
	Enabled    bool
	CronExpr   string
	StrideDays int
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/fund_analyzer.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		CAL: CALConfig{
			BaseURL:    getEnv("CAL_BASE_URL", "https://cal.lk/unit-trust/api/fund_prices"),
			ProbeDate:  getEnv("CAL_PROBE_DATE", "2024-10-01"),
			RetryDelay: getDurationEnv("CAL_RETRY_DELAY", time.Second),
			Cooldown:   getDurationEnv("CAL_COOLDOWN", 500*time.Millisecond),
		},
		Scheduler: SchedulerConfig{
			Enabled:    getBoolEnv("SCHEDULER_ENABLED", true),
			CronExpr:   getEnv("SCHEDULER_CRON", "@daily"),
			StrideDays: getIntEnv("SCHEDULER_STRIDE_DAYS", 1),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
