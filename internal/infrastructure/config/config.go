// internal/infrastructure/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string

	// Postgres
	PostgresDSN   string
	PostgresDebug bool

	// MongoDB
	MongoURI         string
	MongoDB          string
	MongoUser        string
	MongoPassword    string
	ActivityLogLimit int64

	// Redis, optional
	RedisAddr     string
	RedisPassword string

	// Auth
	JWTSecret     string
	TokenLifespan time.Duration
	AdminUsername string
	AdminPassword string

	// Oversight
	ActivityFeedSize         int
	OversightRefreshInterval time.Duration

	// Gmail, optional
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailSender       string
	AdminNotifyEmails []string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion: getEnv("APP_VERSION", "1.0.0"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,
		CORSOrigins:  getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),

		PostgresDSN:   getEnv("POSTGRES_DSN", "host=localhost user=txapp password=txapp dbname=txapp port=5432 sslmode=disable"),
		PostgresDebug: getEnvAsBool("POSTGRES_DEBUG", false),

		MongoURI:         getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:          getEnv("MONGO_DB", "txapp"),
		MongoUser:        getEnv("MONGO_USER", ""),
		MongoPassword:    getEnv("MONGO_PASSWORD", ""),
		ActivityLogLimit: int64(getEnvAsInt("ACTIVITY_LOG_LIMIT", 10000)),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		TokenLifespan: time.Duration(getEnvAsInt("TOKEN_HOUR_LIFESPAN", 12)) * time.Hour,
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		ActivityFeedSize:         getEnvAsInt("ACTIVITY_FEED_SIZE", 50),
		OversightRefreshInterval: time.Duration(getEnvAsInt("OVERSIGHT_REFRESH_INTERVAL", 60)) * time.Second,

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailSender:       getEnv("GMAIL_SENDER", ""),
		AdminNotifyEmails: getEnvAsList("ADMIN_NOTIFY_EMAIL", nil),
	}

	if config.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
