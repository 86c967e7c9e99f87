package linguistic

import (
	"context"
	"log/slog"

	"github.com/MikeSquared-Agency/metronome/internal/timeline"
)

// Analyzer returns features for a batch of segments, keyed by segment index.
type Analyzer interface {
	Analyze(ctx context.Context, segments []Segment) (map[int]timeline.LinguisticFeatures, error)
}

// Outcome records what enrichment did during a build.
type Outcome struct {
	Attempted bool
	Applied   bool
	Segments  int
	Error     string
}

// Enrich sends every window with text to the analyzer in one batch and
// merges the features back by second. The batch succeeds or fails as a
// whole; on failure no window is touched. A nil analyzer skips enrichment.
func Enrich(ctx context.Context, a Analyzer, windows []timeline.Window, logger *slog.Logger) Outcome {
	var segments []Segment
	for _, w := range windows {
		if w.Text != "" {
			segments = append(segments, Segment{SegmentIndex: w.Second, Text: w.Text})
		}
	}
	out := Outcome{Segments: len(segments)}

	if a == nil {
		logger.Info("linguistic analysis skipped: service not configured")
		out.Error = "linguistic service not configured"
		return out
	}
	if len(segments) == 0 {
		return out
	}

	out.Attempted = true
	features, err := a.Analyze(ctx, segments)
	if err != nil {
		logger.Warn("linguistic analysis failed, continuing without features",
			"segments", len(segments),
			"error", err,
		)
		out.Error = err.Error()
		return out
	}

	for i := range windows {
		if f, ok := features[windows[i].Second]; ok {
			f := f
			windows[i].LinguisticFeatures = &f
		}
	}
	out.Applied = true
	logger.Info("linguistic analysis applied", "segments", len(segments), "results", len(features))
	return out
}
