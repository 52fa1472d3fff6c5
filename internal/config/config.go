package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Security
	SecretKey string

	// Application
	AppEnv   string
	AppPort  string
	LogLevel string

	// Rate Limiting
	RateLimitPerUser int
	RateLimitPerIP   int

	// Check-in
	CheckinSkewSeconds     int
	CheckinIntervalMinutes int

	// PDV checkout
	CheckoutTTLMinutes int
	CheckoutSweepSpec  string

	// Events
	EventQueueSize int
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "points"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "points_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		SecretKey: getEnv("APP_SECRET_KEY", ""),

		AppEnv:   getEnv("APP_ENV", "development"),
		AppPort:  getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RateLimitPerUser: getEnvInt("RATE_LIMIT_PER_USER", 30),
		RateLimitPerIP:   getEnvInt("RATE_LIMIT_PER_IP", 120),

		CheckinSkewSeconds:     getEnvInt("CHECKIN_SKEW_SECONDS", 90),
		CheckinIntervalMinutes: getEnvInt("CHECKIN_INTERVAL_MINUTES", 30),

		CheckoutTTLMinutes: getEnvInt("CHECKOUT_TTL_MINUTES", 5),
		CheckoutSweepSpec:  getEnv("CHECKOUT_SWEEP_SPEC", "*/30 * * * * *"),

		EventQueueSize: getEnvInt("EVENT_QUEUE_SIZE", 256),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("APP_SECRET_KEY is required")
	}
	if len(c.SecretKey) < 32 {
		return fmt.Errorf("APP_SECRET_KEY must be at least 32 characters")
	}
	if c.CheckinSkewSeconds <= 0 {
		return fmt.Errorf("CHECKIN_SKEW_SECONDS must be positive")
	}
	if c.CheckoutTTLMinutes <= 0 {
		return fmt.Errorf("CHECKOUT_TTL_MINUTES must be positive")
	}
	return nil
}

func (c *Config) ValidateProductionSecurity() error {
	if c.AppEnv != "production" {
		return nil
	}

	if c.DBSSLMode != "require" {
		return fmt.Errorf("DB_SSLMODE must be 'require' in production")
	}
	if c.SecretKey == "your_secret_key_minimum_32_chars_here_change_this" {
		return fmt.Errorf("APP_SECRET_KEY must be changed from default in production")
	}

	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) GetCheckinSkew() time.Duration {
	return time.Duration(c.CheckinSkewSeconds) * time.Second
}

func (c *Config) GetCheckinInterval() time.Duration {
	return time.Duration(c.CheckinIntervalMinutes) * time.Minute
}

func (c *Config) GetCheckoutTTL() time.Duration {
	return time.Duration(c.CheckoutTTLMinutes) * time.Minute
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
