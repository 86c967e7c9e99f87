package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/metronome/internal/config"
	"github.com/MikeSquared-Agency/metronome/internal/delivery"
	"github.com/MikeSquared-Agency/metronome/internal/hume"
	"github.com/MikeSquared-Agency/metronome/internal/linguistic"
	"github.com/MikeSquared-Agency/metronome/internal/processor"
	"github.com/MikeSquared-Agency/metronome/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "metronome:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg config.Config

	root := &cobra.Command{
		Use:           "metronome",
		Short:         "Builds per-second conversation timelines from transcripts and emotion predictions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			// stdout carries the result JSON for one-shot builds
			if cmd.Name() == "build" {
				setupLogging(cfg.LogLevel, os.Stderr)
			} else {
				setupLogging(cfg.LogLevel, os.Stdout)
			}
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(&cfg),
		newBuildCmd(&cfg),
		newBackfillCmd(&cfg),
	)
	return root
}

func openStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := store.New(ctx, cfg.DatabaseURL, cfg.EmotionInsertBatchSize)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	slog.Info("database connected")
	return db, nil
}

// newProcessor wires the optional collaborators that are configured.
func newProcessor(cfg config.Config, db *store.Store) *processor.Processor {
	logger := slog.Default()
	proc := processor.New(db, logger)

	if cfg.HumeAPIKey != "" {
		proc.WithFetcher(hume.NewClient(cfg.HumeAPIKey, cfg.HumeAPIURL))
		slog.Info("live emotion fetch enabled", "url", cfg.HumeAPIURL)
	}

	if cfg.LinguisticServiceURL != "" {
		proc.WithAnalyzer(linguistic.NewClient(cfg.LinguisticServiceURL, cfg.LinguisticTimeout))
		slog.Info("linguistic enrichment enabled", "url", cfg.LinguisticServiceURL)
	} else {
		slog.Warn("linguistic service not configured, timelines will carry no linguistic features")
	}

	if cfg.TimelineWebhookURL != "" {
		proc.WithDeliverer(delivery.NewDispatcher(cfg.TimelineWebhookURL, cfg.WebhookTimeout, logger))
		slog.Info("timeline webhook enabled", "url", cfg.TimelineWebhookURL)
	}

	return proc
}

func setupLogging(level string, w io.Writer) {
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
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
