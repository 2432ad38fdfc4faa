package config

import (
	"os"
	"strconv"
)

// Config is read from the process environment at startup. A missing
// upstream credential is not fatal here: every gateway call checks it and
// fails with a service-misconfigured error instead.
type Config struct {
	Port           int
	LogLevel       string
	GoogleAIAPIKey string
	GeminiModel    string

	// Prompt-size bounds for the chat operation. Policy constants with
	// env overrides, not derived values.
	ChatHistoryWindow     int
	TimestampContextLimit int
}

func Load() Config {
	return Config{
		Port:                  envInt("TUBELENS_PORT", 8460),
		LogLevel:              envStr("LOG_LEVEL", "info"),
		GoogleAIAPIKey:        envStr("GOOGLE_AI_API_KEY", ""),
		GeminiModel:           envStr("TUBELENS_MODEL", "gemini-2.5-flash"),
		ChatHistoryWindow:     envInt("CHAT_HISTORY_WINDOW", 6),
		TimestampContextLimit: envInt("TIMESTAMP_CONTEXT_LIMIT", 10),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
