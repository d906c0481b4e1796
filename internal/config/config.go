package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Quota window modes
const (
	RateLimitWindowFixed   = "fixed"
	RateLimitWindowMonthly = "monthly"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	RequestTimeout time.Duration
	MaxInFlight    int64
	QueueTimeout   time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL. DATABASE_URL wins when set.
func (c DatabaseConfig) URL() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
	TagsTTL  time.Duration
}

// JWTConfig holds the secret used to verify dashboard session tokens
type JWTConfig struct {
	Secret string
}

// RateLimitConfig controls the per-key quota behavior
type RateLimitConfig struct {
	Window          string
	RetryAfter      time.Duration
	DefaultKeyLimit int
}

// Monthly reports whether quotas reset at calendar month boundaries.
func (c RateLimitConfig) Monthly() bool {
	return c.Window == RateLimitWindowMonthly
}

// Load loads configuration from environment variables
func Load() *Config {
	window := strings.ToLower(getEnv("RATE_LIMIT_WINDOW", RateLimitWindowFixed))
	if window != RateLimitWindowMonthly {
		window = RateLimitWindowFixed
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			RequestTimeout: getEnvAsDuration("HTTP_REQUEST_TIMEOUT", 10*time.Second),
			MaxInFlight:    int64(getEnvAsInt("HTTP_MAX_IN_FLIGHT", 256)),
			QueueTimeout:   getEnvAsDuration("HTTP_QUEUE_TIMEOUT", 2*time.Second),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "writespace"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
			TagsTTL:  getEnvAsDuration("CACHE_TAGS_TTL", 5*time.Minute),
		},
		JWT: JWTConfig{
			Secret: getEnv("SUPABASE_JWT_SECRET", getEnv("JWT_SECRET", "change-this-in-production")),
		},
		RateLimit: RateLimitConfig{
			Window:          window,
			RetryAfter:      getEnvAsDuration("RATE_LIMIT_RETRY_AFTER", time.Hour),
			DefaultKeyLimit: getEnvAsInt("RATE_LIMIT_DEFAULT", 1000),
		},
	}
}

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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
