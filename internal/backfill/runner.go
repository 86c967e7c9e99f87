package backfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/metronome/internal/store"
	"github.com/MikeSquared-Agency/metronome/internal/timeline"
)

// Config holds the backfill command configuration.
type Config struct {
	Since     time.Time
	Limit     int
	DryRun    bool
	StatePath string
	SaveEvery int // persist state after this many builds (default 10)
}

// ConversationLister lists candidate conversations.
type ConversationLister interface {
	ListConversationIDs(ctx context.Context, since time.Time, limit int) ([]string, error)
}

type Builder interface {
	Build(ctx context.Context, conversationID string) (*timeline.Result, error)
}

// Summary reports what a run did.
type Summary struct {
	Listed     int
	Skipped    int
	Built      int
	NotFound   int
	Failed     int
	WouldBuild []string
}

// Runner rebuilds timelines for existing conversations.
type Runner struct {
	cfg     Config
	lister  ConversationLister
	builder Builder
	logger  *slog.Logger
}

func NewRunner(cfg Config, lister ConversationLister, builder Builder, logger *slog.Logger) *Runner {
	if cfg.SaveEvery <= 0 {
		cfg.SaveEvery = 10
	}
	return &Runner{
		cfg:     cfg,
		lister:  lister,
		builder: builder,
		logger:  logger,
	}
}

// Run builds every listed conversation not yet recorded in the state
// file. A dry run lists what would be built and leaves the state alone.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	state, err := LoadState(r.cfg.StatePath)
	if err != nil {
		return sum, fmt.Errorf("load state: %w", err)
	}

	ids, err := r.lister.ListConversationIDs(ctx, r.cfg.Since, r.cfg.Limit)
	if err != nil {
		return sum, fmt.Errorf("list conversations: %w", err)
	}
	sum.Listed = len(ids)

	var pending []string
	for _, id := range ids {
		if state.IsProcessed(id) {
			sum.Skipped++
			continue
		}
		pending = append(pending, id)
	}

	r.logger.Info("conversations to process",
		"listed", sum.Listed,
		"pending", len(pending),
		"skipped", sum.Skipped,
		"dry_run", r.cfg.DryRun,
	)

	if r.cfg.DryRun {
		sum.WouldBuild = pending
		return sum, nil
	}

	state.ConversationsRemaining = len(pending)
	for i, id := range pending {
		select {
		case <-ctx.Done():
			r.logger.Info("backfill interrupted, saving state")
			_ = state.Save()
			return sum, ctx.Err()
		default:
		}

		result, err := r.builder.Build(ctx, id)
		state.ConversationsRemaining--
		switch {
		case errors.Is(err, store.ErrConversationNotFound):
			r.logger.Warn("conversation vanished before build", "conversation_id", id)
			sum.NotFound++
			state.MarkProcessed(id)
		case err != nil:
			r.logger.Error("build failed", "conversation_id", id, "error", err)
			sum.Failed++
			state.AddError(fmt.Sprintf("build %s: %v", id, err))
		default:
			sum.Built++
			state.MarkProcessed(id)
			if result.Metadata.LinguisticAnalysisRan {
				state.LinguisticApplied++
			}
			if result.Metadata.WebhookDelivered {
				state.WebhooksDelivered++
			}
		}

		if (i+1)%r.cfg.SaveEvery == 0 {
			if err := state.Save(); err != nil {
				r.logger.Warn("failed to save state", "error", err)
			}
		}
	}

	if err := state.Save(); err != nil {
		return sum, fmt.Errorf("save state: %w", err)
	}

	r.logger.Info("backfill complete",
		"built", sum.Built,
		"failed", sum.Failed,
		"not_found", sum.NotFound,
		"skipped", sum.Skipped,
	)
	return sum, nil
}
