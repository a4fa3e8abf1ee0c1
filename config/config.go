package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DB       DBConfig
	Telegram TelegramConfig
	Storage  StorageConfig
	Feed     FeedConfig
	Metrics  MetricsConfig
	LogLevel string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type TelegramConfig struct {
	Token string
}

// StorageConfig selects the durable key-value backend for carts, settings and order history.
type StorageConfig struct {
	Backend       string // "postgres", "redis" or "memory"
	RedisAddr     string
	RedisPassword string
}

type FeedConfig struct {
	Limit int // max candidates fetched per category selection
}

type MetricsConfig struct {
	Addr string // empty disables the /metrics listener
}

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid DB_PORT %q", os.Getenv("DB_PORT"))
	}
	feedLimit, err := strconv.Atoi(getEnv("FEED_LIMIT", "50"))
	if err != nil || feedLimit <= 0 {
		feedLimit = 50
	}

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "storefront"),
		},
		Telegram: TelegramConfig{
			Token: getEnv("TOKEN", ""),
		},
		Storage: StorageConfig{
			Backend:       getEnv("KV_BACKEND", BackendPostgres),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
		},
		Feed: FeedConfig{
			Limit: feedLimit,
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
