package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/metronome/internal/backfill"
	"github.com/MikeSquared-Agency/metronome/internal/config"
)

func newBackfillCmd(cfg *config.Config) *cobra.Command {
	var (
		since     string
		limit     int
		dryRun    bool
		statePath string
	)

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Rebuild timelines for existing conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bcfg := backfill.Config{
				Limit:     limit,
				DryRun:    dryRun,
				StatePath: statePath,
			}
			if since != "" {
				t, err := parseSince(since)
				if err != nil {
					return err
				}
				bcfg.Since = t
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := openStore(ctx, *cfg)
			if err != nil {
				slog.Error("database unavailable", "error", err)
				return err
			}
			defer db.Close()

			runner := backfill.NewRunner(bcfg, db, newProcessor(*cfg, db), slog.Default())
			sum, err := runner.Run(ctx)
			if err != nil {
				slog.Error("backfill failed", "error", err)
				return err
			}

			if dryRun {
				for _, id := range sum.WouldBuild {
					fmt.Fprintln(os.Stdout, id)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "only conversations created on or after this date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum conversations to list (0 = all)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list conversations that would be built without building them")
	cmd.Flags().StringVar(&statePath, "state-file", backfill.DefaultStatePath, "resumable progress file")
	return cmd
}

func parseSince(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: want YYYY-MM-DD or RFC3339", s)
	}
	return t, nil
}
