package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/metronome/internal/api"
	"github.com/MikeSquared-Agency/metronome/internal/config"
	"github.com/MikeSquared-Agency/metronome/internal/hermes"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the conversation-ended subscriber",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	slog.Info("metronome starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	db, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		return err
	}
	defer db.Close()

	// NATS/Hermes
	hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		return err
	}
	defer hermesClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	proc := newProcessor(cfg, db).WithPublisher(hermesClient)

	if err := hermesClient.Subscribe(hermes.SubjectConversationEnded, proc.HandleConversationEnded); err != nil {
		slog.Error("failed to subscribe to conversation events", "error", err)
		return err
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, proc)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if err := hermesClient.Publish(hermes.SubjectRegistered, hermes.RegisteredEvent{
		Agent:     "metronome",
		Port:      cfg.Port,
		Subjects:  []string{hermes.SubjectConversationEnded, hermes.SubjectTimelineBuilt},
		StartedAt: time.Now().UTC(),
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("metronome ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	slog.Info("shutting down")
	cancel()
	slog.Info("metronome stopped")
	return nil
}
