package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"LEVSIM_ENV", "LOG_LEVEL", "YAHOO_BASE_URL", "YAHOO_REQUESTS_PER_SECOND", "TELEGRAM_CHAT_ID", "CHART_WIDTH", "OPENAI_MODEL", "PUBLISH_TIMEZONE"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://query1.finance.yahoo.com", cfg.YahooBaseURL)
	assert.Equal(t, 2.0, cfg.YahooRatePerSec)
	assert.Equal(t, 1000, cfg.ChartWidth)
	assert.Equal(t, int64(0), cfg.TelegramChatID)
	assert.Equal(t, "gpt-4", cfg.OpenAIModel)
	assert.Equal(t, "America/New_York", cfg.PublishTimezone)
}

func TestLoad_PublishStudies(t *testing.T) {
	t.Setenv("PUBLISH_SCHEDULE", "30 16 * * 1-5")
	t.Setenv("PUBLISH_STUDIES", " tracking, ,inception ")

	cfg := Load()
	assert.Equal(t, "30 16 * * 1-5", cfg.PublishSchedule)
	assert.Equal(t, []string{"tracking", "inception"}, cfg.PublishStudies)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LEVSIM_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("YAHOO_REQUESTS_PER_SECOND", "0.5")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234567890")
	t.Setenv("CHART_WIDTH", "1400")
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("TELEGRAM_WEBHOOK_URL", "https://bot.example.com/telegram/webhook")

	cfg := Load()
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 0.5, cfg.YahooRatePerSec)
	assert.Equal(t, int64(-1001234567890), cfg.TelegramChatID)
	assert.Equal(t, 1400, cfg.ChartWidth)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, "https://bot.example.com/telegram/webhook", cfg.TelegramWebhookURL)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("YAHOO_REQUESTS_PER_SECOND", "-3")
	t.Setenv("CHART_HEIGHT", "tall")

	cfg := Load()
	assert.Equal(t, 2.0, cfg.YahooRatePerSec)
	assert.Equal(t, 600, cfg.ChartHeight)
}
