package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tubelens/tubelens/internal/api"
	"github.com/tubelens/tubelens/internal/config"
	"github.com/tubelens/tubelens/internal/gateway"
	"github.com/tubelens/tubelens/internal/gemini"
)

func main() {
	// Optional .env for local development; the environment wins.
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("tubelens starting", "port", cfg.Port)

	// A missing credential is not fatal at boot: the gateway turns it
	// into a service-misconfigured error on every call instead.
	llm := gemini.NewClient(cfg.GoogleAIAPIKey, cfg.GeminiModel)
	if llm.Configured() {
		slog.Info("gemini client ready", "model", cfg.GeminiModel)
	} else {
		slog.Warn("GOOGLE_AI_API_KEY not set — AI operations will fail until configured")
	}

	gw := gateway.New(llm, gateway.Options{
		HistoryWindow:  cfg.ChatHistoryWindow,
		TimestampLimit: cfg.TimestampContextLimit,
	}, slog.Default())

	srv := api.NewServer(cfg.Port, gw, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("tubelens ready", "port", cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
