package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the runtime settings shared by the API server and the
// outbox worker. Values come from environment variables; godotenv loading
// happens in the binaries before Load is called.
type Config struct {
	DatabaseURL string
	RabbitMQURL string
	RedisAddr   string
	HTTPAddr    string

	JWTSecret      string
	AccessTokenTTL time.Duration

	RelayBatchSize int
	RelayInterval  time.Duration
	LockTimeout    time.Duration
}

// Load reads the environment and validates required settings.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		HTTPAddr:       getEnvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RelayBatchSize: getEnvInt("OUTBOX_BATCH_SIZE", 10),
		RelayInterval:  getEnvDuration("OUTBOX_POLL_INTERVAL", time.Second),
		LockTimeout:    getEnvDuration("DB_LOCK_TIMEOUT", 3*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	return cfg, nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
