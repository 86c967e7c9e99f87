package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/metronome/internal/delivery"
	"github.com/MikeSquared-Agency/metronome/internal/hermes"
	"github.com/MikeSquared-Agency/metronome/internal/linguistic"
	"github.com/MikeSquared-Agency/metronome/internal/store"
	"github.com/MikeSquared-Agency/metronome/internal/timeline"
)

// ConversationStore is the persistence the processor reads from and
// writes freshly fetched predictions back to.
type ConversationStore interface {
	GetConversation(ctx context.Context, id string) (*store.Conversation, error)
	ListEmotionPredictions(ctx context.Context, conversationID string) ([]timeline.EmotionPrediction, error)
	ReplaceEmotionPredictions(ctx context.Context, conversationID string, preds []timeline.EmotionPrediction) error
}

// PredictionFetcher retrieves predictions for a finished inference job.
type PredictionFetcher interface {
	FetchPredictions(ctx context.Context, jobID string) ([]timeline.EmotionPrediction, error)
}

type Deliverer interface {
	Deliver(ctx context.Context, result *timeline.Result) delivery.Outcome
}

type Publisher interface {
	Publish(subject string, data any) error
}

// Processor assembles conversation timelines. It is the only entry point
// that runs the full build pipeline.
type Processor struct {
	store     ConversationStore
	fetcher   PredictionFetcher
	analyzer  linguistic.Analyzer
	deliverer Deliverer
	publisher Publisher
	logger    *slog.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

func New(s ConversationStore, logger *slog.Logger) *Processor {
	return &Processor{
		store:  s,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.New,
	}
}

// WithFetcher enables live prediction fetches for conversations that have
// no stored predictions but reference an inference job.
func (p *Processor) WithFetcher(f PredictionFetcher) *Processor {
	p.fetcher = f
	return p
}

func (p *Processor) WithAnalyzer(a linguistic.Analyzer) *Processor {
	p.analyzer = a
	return p
}

func (p *Processor) WithDeliverer(d Deliverer) *Processor {
	p.deliverer = d
	return p
}

func (p *Processor) WithPublisher(pub Publisher) *Processor {
	p.publisher = pub
	return p
}

// Build assembles the timeline for one conversation. Only a missing or
// unreadable conversation is returned as an error; every other failure
// degrades the result and is recorded in its metadata.
func (p *Processor) Build(ctx context.Context, conversationID string) (*timeline.Result, error) {
	logger := p.logger.With("conversation_id", conversationID)

	conv, err := p.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("build timeline: %w", err)
	}

	events, err := timeline.ParseTranscript(conv.TranscriptJSON)
	if err != nil {
		logger.Warn("unreadable transcript, building without text", "error", err)
		events = nil
	}

	meta := timeline.Metadata{
		BuildID: p.newID(),
		BuiltAt: p.now(),
	}
	preds := p.loadEmotions(ctx, conv, &meta, logger)

	duration := timeline.ClampDuration(conv.DurationSeconds)
	if duration != conv.DurationSeconds {
		logger.Warn("duration out of range, clamped", "duration_seconds", conv.DurationSeconds, "clamped", duration)
	}

	windows, counts := timeline.BuildWindows(duration, events, preds)
	meta.TranscriptEvents = counts.TranscriptEvents
	meta.TranscriptEventsDiscarded = counts.TranscriptEventsDiscarded
	meta.EmotionPredictions = counts.EmotionPredictions
	meta.EmotionPredictionsDiscarded = counts.EmotionPredictionsDiscarded
	logger.Info("windows bucketed",
		"duration_seconds", duration,
		"transcript_events", counts.TranscriptEvents,
		"emotion_predictions", counts.EmotionPredictions,
	)

	lo := linguistic.Enrich(ctx, p.analyzer, windows, logger)
	meta.LinguisticAnalysisAttempted = lo.Attempted
	meta.LinguisticAnalysisRan = lo.Applied
	meta.LinguisticSegments = lo.Segments
	meta.LinguisticError = lo.Error

	result := &timeline.Result{
		ConversationID:  conv.ID,
		DurationSeconds: duration,
		Timeline:        windows,
		Summary:         timeline.Summarize(windows, duration),
		Metadata:        meta,
	}

	if p.deliverer != nil {
		out := p.deliverer.Deliver(ctx, result)
		result.Metadata.WebhookAttempted = out.Attempted
		result.Metadata.WebhookDelivered = out.Delivered
		result.Metadata.WebhookStatus = out.StatusCode
		result.Metadata.WebhookError = out.Error
	}

	p.publishBuilt(result, logger)

	logger.Info("timeline built",
		"build_id", result.Metadata.BuildID,
		"emotion_source", result.Metadata.EmotionSource,
		"linguistic_analysis_ran", result.Metadata.LinguisticAnalysisRan,
		"webhook_delivered", result.Metadata.WebhookDelivered,
	)
	return result, nil
}

// loadEmotions prefers stored predictions. When none are stored and the
// conversation references an inference job, predictions are fetched live
// and persisted so the next build reads them from the database.
func (p *Processor) loadEmotions(ctx context.Context, conv *store.Conversation, meta *timeline.Metadata, logger *slog.Logger) []timeline.EmotionPrediction {
	meta.EmotionSource = timeline.EmotionSourceNone

	var errs []error
	preds, err := p.store.ListEmotionPredictions(ctx, conv.ID)
	if err != nil {
		logger.Warn("failed to load stored emotion predictions", "error", err)
		errs = append(errs, err)
	}
	if len(preds) > 0 {
		meta.EmotionSource = timeline.EmotionSourceDatabase
		return preds
	}

	if conv.HumeJobID != "" && p.fetcher != nil {
		fetched, err := p.fetcher.FetchPredictions(ctx, conv.HumeJobID)
		switch {
		case err != nil:
			logger.Warn("live emotion fetch failed", "job_id", conv.HumeJobID, "error", err)
			errs = append(errs, err)
		case len(fetched) > 0:
			meta.EmotionSource = timeline.EmotionSourceLive
			preds = fetched
			if err := p.store.ReplaceEmotionPredictions(ctx, conv.ID, fetched); err != nil {
				logger.Warn("failed to persist fetched emotion predictions", "error", err)
			} else {
				meta.EmotionsPersisted = true
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		meta.EmotionSourceError = err.Error()
	}
	return preds
}

func (p *Processor) publishBuilt(result *timeline.Result, logger *slog.Logger) {
	if p.publisher == nil {
		return
	}
	ev := hermes.TimelineBuiltEvent{
		ConversationID:        result.ConversationID,
		BuildID:               result.Metadata.BuildID.String(),
		DurationSeconds:       result.DurationSeconds,
		LinguisticAnalysisRan: result.Metadata.LinguisticAnalysisRan,
		WebhookDelivered:      result.Metadata.WebhookDelivered,
	}
	if err := p.publisher.Publish(hermes.SubjectTimelineBuilt, ev); err != nil {
		logger.Warn("failed to publish timeline built", "error", err)
	}
}

// HandleConversationEnded is the NATS handler for swarm.conversation.ended.
func (p *Processor) HandleConversationEnded(subject string, data []byte) {
	ev, err := hermes.ParseConversationEnded(data)
	if err != nil {
		p.logger.Error("failed to parse conversation ended event", "subject", subject, "error", err)
		return
	}

	if _, err := p.Build(context.Background(), ev.ConversationID); err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			p.logger.Warn("conversation not found, skipping build", "conversation_id", ev.ConversationID)
			return
		}
		p.logger.Error("timeline build failed", "conversation_id", ev.ConversationID, "error", err)
	}
}
