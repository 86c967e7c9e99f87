package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/metronome/internal/config"
	"github.com/MikeSquared-Agency/metronome/internal/store"
)

func newBuildCmd(cfg *config.Config) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "build <conversation-id>",
		Short: "Build one conversation timeline and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := openStore(ctx, *cfg)
			if err != nil {
				slog.Error("database unavailable", "error", err)
				return err
			}
			defer db.Close()

			result, err := newProcessor(*cfg, db).Build(ctx, args[0])
			if errors.Is(err, store.ErrConversationNotFound) {
				slog.Error("conversation not found", "conversation_id", args[0])
				return err
			}
			if err != nil {
				slog.Error("timeline build failed", "conversation_id", args[0], "error", err)
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			if pretty {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(result); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the result JSON")
	return cmd
}
