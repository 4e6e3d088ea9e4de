package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the banking client
type Config struct {
	// Banking API
	BaseURL string

	// Credentials for /authToken (optional; only needed for -use-auth)
	Username string
	Password string
	Claim    string

	// Request execution
	Timeout     time.Duration
	MaxAttempts int
	// RateLimit caps outgoing attempts per second; 0 disables pacing.
	RateLimit int

	// Stub server
	Port      string
	JWTSecret string
	Env       string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	timeout, err := getEnvInt("BANKING_TIMEOUT", 30)
	if err != nil {
		return nil, err
	}
	maxAttempts, err := getEnvInt("BANKING_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	rateLimit, err := getEnvInt("BANKING_RATE_LIMIT", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BaseURL:     getEnv("BANKING_API_URL", "http://localhost:8123"),
		Username:    getEnv("BANKING_USERNAME", "bob"),
		Password:    getEnv("BANKING_PASSWORD", "secret"),
		Claim:       getEnv("BANKING_CLAIM", "transfer"),
		Timeout:     time.Duration(timeout) * time.Second,
		MaxAttempts: maxAttempts,
		RateLimit:   rateLimit,
		Port:        getEnv("PORT", "8123"),
		JWTSecret:   getEnv("JWT_SECRET", "local-dev-secret"),
		Env:         getEnv("ENV", "development"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("BANKING_API_URL is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("BANKING_TIMEOUT must be positive")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("BANKING_MAX_ATTEMPTS must be at least 1")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("BANKING_RATE_LIMIT must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
