package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL string

	LLMProvider     string
	AnthropicAPIKey string
	VeniceAPIKey    string
	ModelName       string

	// HistoryCharLimit caps the NPC interaction history included in a
	// generation prompt. Full history is always persisted.
	HistoryCharLimit int
}

func Load() (*Config, error) {
	historyLimit := 4000
	if v := os.Getenv("HISTORY_CHAR_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HISTORY_CHAR_LIMIT: %w", err)
		}
		historyLimit = n
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		LogLevel:         parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379"),
		LLMProvider:      getEnv("LLM_PROVIDER", "anthropic"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		VeniceAPIKey:     os.Getenv("VENICE_API_KEY"),
		ModelName:        getEnv("MODEL_NAME", "claude-sonnet-4-20250514"),
		HistoryCharLimit: historyLimit,
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
