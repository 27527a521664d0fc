package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment          string
	ServerPort           int
	LogLevel             string
	CORSAllowedOrigins   []string
	DatabaseHost         string
	DatabasePort         int
	DatabaseUser         string
	DatabasePassword     string
	DatabaseName         string
	DatabaseSSLMode      string
	RedisURL             string
	JWTSecret            string
	TokenTTL             time.Duration
	RateLimitPerMinute   int
	LoginRateLimit       int
	TrustProxyHeaders    bool
	SweepIntervalMinutes int
	SeedSampleData       bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	tokenTTLHours, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL_HOURS: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	loginRateLimit, err := strconv.Atoi(getEnv("LOGIN_RATE_LIMIT_PER_MINUTE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_LIMIT_PER_MINUTE: %w", err)
	}

	sweepInterval, err := strconv.Atoi(getEnv("BOOKING_SWEEP_INTERVAL_MINUTES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_SWEEP_INTERVAL_MINUTES: %w", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if getEnv("ENVIRONMENT", "development") != "development" {
			return nil, fmt.Errorf("JWT_SECRET is required outside development")
		}
		secret = "dev-only-insecure-secret"
	}

	return &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		ServerPort:       port,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
		DatabaseHost:         getEnv("DB_HOST", "localhost"),
		DatabasePort:         dbPort,
		DatabaseUser:         getEnv("DB_USER", "campusportal"),
		DatabasePassword:     getEnv("DB_PASSWORD", "dev"),
		DatabaseName:         getEnv("DB_NAME", "campusportal"),
		DatabaseSSLMode:      getEnv("DB_SSLMODE", "disable"),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:            secret,
		TokenTTL:             time.Duration(tokenTTLHours) * time.Hour,
		RateLimitPerMinute:   rateLimit,
		LoginRateLimit:       loginRateLimit,
		TrustProxyHeaders:    getEnv("TRUST_PROXY_HEADERS", "false") == "true",
		SweepIntervalMinutes: sweepInterval,
		SeedSampleData:       getEnv("SEED_SAMPLE_DATA", "true") == "true",
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
