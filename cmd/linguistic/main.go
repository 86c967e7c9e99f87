package main

import (
	"log/slog"
	"os"

	"github.com/MikeSquared-Agency/metronome/internal/config"
	"github.com/MikeSquared-Agency/metronome/internal/linguistic"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel)

	srv := linguistic.NewServer(cfg.LinguisticPort)
	if err := srv.Start(); err != nil {
		slog.Error("linguistic service stopped", "error", err)
		os.Exit(1)
	}
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
