package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/telegram-report-bot/internal/models"
)

// Load loads configuration from environment variables
// It first attempts to load from .env file, then reads environment variables
func Load() (*models.BotConfig, error) {
	// Try to load .env file (optional, ignore error if not found)
	_ = godotenv.Load()

	config := &models.BotConfig{
		// Telegram settings
		TelegramToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		GroupChatID:   getEnvInt64("TELEGRAM_GROUP_CHAT_ID", 0),

		// Storage settings
		DatabasePath:    getEnv("DATABASE_PATH", "reports.db"),
		DatabaseTimeout: getEnvInt("DATABASE_TIMEOUT", 5),

		// Roster settings
		RosterPath: getEnv("ROSTER_PATH", ""),

		// App settings
		Timezone:    getEnv("TIMEZONE", "Europe/Moscow"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Environment: getEnv("ENVIRONMENT", "production"),

		// Daily digest schedule (just past midnight, summarizing yesterday)
		SummaryHour:   getEnvInt("SUMMARY_HOUR", 0),
		SummaryMinute: getEnvInt("SUMMARY_MINUTE", 5),

		// Retention
		RetentionDays: getEnvInt("RETENTION_DAYS", 30),
	}

	// Validate configuration
	if err := validate(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validate checks if all required configuration values are set
func validate(cfg *models.BotConfig) error {
	if cfg.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.GroupChatID == 0 {
		return fmt.Errorf("TELEGRAM_GROUP_CHAT_ID is required")
	}
	if cfg.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH must not be empty")
	}

	// Validate positive values
	if cfg.DatabaseTimeout <= 0 {
		return fmt.Errorf("DATABASE_TIMEOUT must be positive, got %d", cfg.DatabaseTimeout)
	}
	if cfg.RetentionDays <= 0 {
		return fmt.Errorf("RETENTION_DAYS must be positive, got %d", cfg.RetentionDays)
	}

	// Validate schedule
	if cfg.SummaryHour < 0 || cfg.SummaryHour > 23 {
		return fmt.Errorf("SUMMARY_HOUR must be between 0 and 23, got %d", cfg.SummaryHour)
	}
	if cfg.SummaryMinute < 0 || cfg.SummaryMinute > 59 {
		return fmt.Errorf("SUMMARY_MINUTE must be between 0 and 59, got %d", cfg.SummaryMinute)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %s", cfg.LogLevel)
	}

	return nil
}

// getEnv retrieves environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves environment variable as integer or returns default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvInt64 retrieves environment variable as int64 or returns default value
func getEnvInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}
