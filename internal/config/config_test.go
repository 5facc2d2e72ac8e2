package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_GROUP_CHAT_ID", "-1001234567890")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.Equal(t, int64(-1001234567890), cfg.GroupChatID)
	assert.Equal(t, "reports.db", cfg.DatabasePath)
	assert.Equal(t, 5, cfg.DatabaseTimeout)
	assert.Equal(t, "", cfg.RosterPath)
	assert.Equal(t, "Europe/Moscow", cfg.Timezone)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0, cfg.SummaryHour)
	assert.Equal(t, 5, cfg.SummaryMinute)
	assert.Equal(t, 30, cfg.RetentionDays)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_PATH", "/var/lib/bot/reports.db")
	t.Setenv("SUMMARY_HOUR", "7")
	t.Setenv("SUMMARY_MINUTE", "30")
	t.Setenv("RETENTION_DAYS", "90")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/bot/reports.db", cfg.DatabasePath)
	assert.Equal(t, 7, cfg.SummaryHour)
	assert.Equal(t, 30, cfg.SummaryMinute)
	assert.Equal(t, 90, cfg.RetentionDays)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing token",
			env:  map[string]string{"TELEGRAM_GROUP_CHAT_ID": "42"},
		},
		{
			name: "missing chat id",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "123:abc"},
		},
		{
			name: "bad summary hour",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN":     "123:abc",
				"TELEGRAM_GROUP_CHAT_ID": "42",
				"SUMMARY_HOUR":           "24",
			},
		},
		{
			name: "bad summary minute",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN":     "123:abc",
				"TELEGRAM_GROUP_CHAT_ID": "42",
				"SUMMARY_MINUTE":         "60",
			},
		},
		{
			name: "zero retention",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN":     "123:abc",
				"TELEGRAM_GROUP_CHAT_ID": "42",
				"RETENTION_DAYS":         "-1",
			},
		},
		{
			name: "bad log level",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN":     "123:abc",
				"TELEGRAM_GROUP_CHAT_ID": "42",
				"LOG_LEVEL":              "verbose",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear the required vars, then apply the case's env
			t.Setenv("TELEGRAM_BOT_TOKEN", "")
			t.Setenv("TELEGRAM_GROUP_CHAT_ID", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
