package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	LogLevel  string
	LogFormat string

	YahooBaseURL    string
	YahooRatePerSec float64
	OutputDir       string
	ChartWidth      int
	ChartHeight     int
	Port            string

	TelegramToken      string
	TelegramChatID     int64
	TelegramWebhookURL string

	OpenAIKey   string
	OpenAIModel string

	// PublishSchedule is a cron expression; empty disables scheduled
	// publishing in serve.
	PublishSchedule string
	PublishStudies  []string
	PublishTimezone string
}

// Load reads configuration from the environment. A .env file in the working
// directory, when present, is loaded first without overriding variables that
// are already set.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:             getEnv("LEVSIM_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
		YahooBaseURL:    getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		YahooRatePerSec: getEnvFloat("YAHOO_REQUESTS_PER_SECOND", 2),
		OutputDir:       getEnv("OUTPUT_DIR", "charts"),
		ChartWidth:      getEnvInt("CHART_WIDTH", 1000),
		ChartHeight:     getEnvInt("CHART_HEIGHT", 600),
		Port:            getEnv("PORT", "9095"),

		TelegramToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:     getEnvInt64("TELEGRAM_CHAT_ID", 0),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),

		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: getEnv("OPENAI_MODEL", "gpt-4"),

		PublishSchedule: os.Getenv("PUBLISH_SCHEDULE"),
		PublishStudies:  getEnvList("PUBLISH_STUDIES"),
		PublishTimezone: getEnv("PUBLISH_TIMEZONE", "America/New_York"),
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func getEnvInt64(k string, def int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(k), 10, 64)
	if err != nil {
		return def
	}
	return v
}

func getEnvFloat(k string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(k), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// getEnvList splits a comma-separated variable, dropping empty items.
func getEnvList(k string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(k), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
