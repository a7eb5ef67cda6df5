package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service configuration. Threshold, intervals and topic
// names are explicit inputs so tests and deployments can vary them.
type Config struct {
	Port string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	RedisURL        string
	BroadcastTopic  string
	UserTopicPrefix string

	LowStockThreshold int
	LowStockInterval  time.Duration

	LifespanInterval time.Duration
	PredictorURL     string
	PredictorTimeout time.Duration
}

// LoadConfig reads the configuration from the environment, loading a .env
// file first when one is present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8087"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Manila"),

		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379"),
		BroadcastTopic:  getEnv("PUSH_BROADCAST_TOPIC", "notifications"),
		UserTopicPrefix: getEnv("PUSH_USER_TOPIC_PREFIX", "notifications.user."),

		LowStockThreshold: getEnvInt("LOW_STOCK_THRESHOLD", 50),
		LowStockInterval:  getEnvDuration("LOW_STOCK_INTERVAL", 24*time.Hour),

		LifespanInterval: getEnvDuration("LIFESPAN_INTERVAL", 60*24*time.Hour),
		PredictorURL:     getEnv("PREDICTOR_URL", "http://localhost:5000"),
		PredictorTimeout: getEnvDuration("PREDICTOR_TIMEOUT", 30*time.Second),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.LowStockThreshold <= 0 {
		return nil, fmt.Errorf("LOW_STOCK_THRESHOLD must be positive")
	}
	return cfg, nil
}

// PostgresDSN renders the GORM connection string from the loaded settings.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB,
		c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone,
	)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
