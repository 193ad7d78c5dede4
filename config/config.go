package config

import (
	"log/slog"
	"os"
	"time"
)

type Config struct {
	// MongoDB configuration
	MongoURI     string
	DatabaseName string

	// LINE channel configuration
	LineChannelSecret      string
	LineChannelAccessToken string

	// OpenAI configuration
	OpenAIAPIKey string
	OpenAIModel  string

	// Admin API configuration
	AdminToken string

	// Human handoff configuration
	HumanModeTimeout time.Duration
	RevertInterval   time.Duration

	// Server configuration
	Port string
}

func LoadConfig() *Config {
	cfg := &Config{
		MongoURI:               getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName:           getEnv("MONGO_DB_NAME", "line_dealer_bot"),
		LineChannelSecret:      getEnv("LINE_CHANNEL_SECRET", ""),
		LineChannelAccessToken: getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		OpenAIAPIKey:           getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:            getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		AdminToken:             getEnv("ADMIN_API_TOKEN", ""),
		HumanModeTimeout:       getDurationEnv("HUMAN_MODE_TIMEOUT", 2*time.Minute),
		RevertInterval:         getDurationEnv("MODE_REVERT_INTERVAL", time.Minute),
		Port:                   getEnv("PORT", "8080"),
	}

	// Validate required configuration
	if cfg.LineChannelSecret == "" {
		slog.Error("LINE_CHANNEL_SECRET not set")
	}
	if cfg.LineChannelAccessToken == "" {
		slog.Error("LINE_CHANNEL_ACCESS_TOKEN not set")
	}
	if cfg.AdminToken == "" {
		slog.Error("ADMIN_API_TOKEN not set, admin endpoints will reject all requests")
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Invalid duration value, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return d
}
