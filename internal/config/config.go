package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Gateway  GatewayConfig
	Trello   TrelloConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Bot      BotConfig
	Logging  LoggingConfig
}

type GatewayConfig struct {
	BaseURL string
	WSURL   string
}

type TrelloConfig struct {
	DeveloperPublicKey string
	MemberToken        string
	BoardName          string
	RequestTimeout     time.Duration
}

type StorageConfig struct {
	// Backend selects the durable store for the roster: "redis" or "postgres".
	Backend string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type BotConfig struct {
	Name   string
	Admins []string
	Team   []string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Gateway: GatewayConfig{
			BaseURL: getEnv("GATEWAY_BASE_URL", "http://localhost:3000"),
			WSURL:   getEnv("GATEWAY_WS_URL", "ws://localhost:3000/ws"),
		},
		Trello: TrelloConfig{
			DeveloperPublicKey: getEnv("TRELLO_DEVELOPER_PUBLIC_KEY", ""),
			MemberToken:        getEnv("TRELLO_MEMBER_TOKEN", ""),
			BoardName:          getEnv("TRELLO_BOARD_NAME", ""),
			RequestTimeout:     time.Duration(getEnvInt("TRELLO_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "redis"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "bot"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "interrupt_bot"),
		},
		Bot: BotConfig{
			Name:   getEnv("BOT_NAME", "interruptbot"),
			Admins: parseCommaSeparated(getEnv("BOT_ADMINS", "")),
			Team:   parseCommaSeparated(getEnv("BOT_TEAM", "")),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Trello.DeveloperPublicKey == "" {
		return fmt.Errorf("TRELLO_DEVELOPER_PUBLIC_KEY is required")
	}
	if c.Trello.MemberToken == "" {
		return fmt.Errorf("TRELLO_MEMBER_TOKEN is required")
	}
	if c.Trello.BoardName == "" {
		return fmt.Errorf("TRELLO_BOARD_NAME is required")
	}
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("GATEWAY_BASE_URL is required")
	}
	if c.Gateway.WSURL == "" {
		return fmt.Errorf("GATEWAY_WS_URL is required")
	}
	switch c.Storage.Backend {
	case "redis", "postgres":
	default:
		return fmt.Errorf("STORAGE_BACKEND must be redis or postgres, got %q", c.Storage.Backend)
	}
	return nil
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

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
