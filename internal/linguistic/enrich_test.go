package linguistic

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/metronome/internal/timeline"
)

type fakeAnalyzer struct {
	calls    int
	segments []Segment
	features map[int]timeline.LinguisticFeatures
	err      error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, segments []Segment) (map[int]timeline.LinguisticFeatures, error) {
	f.calls++
	f.segments = segments
	return f.features, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleWindows() []timeline.Window {
	w := timeline.NewWindows(3)
	w[0].Text = "hello there"
	w[2].Text = "um I think so"
	return w
}

func TestEnrich_MergesBySecond(t *testing.T) {
	fa := &fakeAnalyzer{features: map[int]timeline.LinguisticFeatures{
		0: {OralityScore: 10},
		2: {OralityScore: 20},
	}}
	windows := sampleWindows()

	out := Enrich(context.Background(), fa, windows, discardLogger())
	if !out.Attempted || !out.Applied || out.Segments != 2 || out.Error != "" {
		t.Errorf("unexpected outcome %+v", out)
	}
	if len(fa.segments) != 2 || fa.segments[0].SegmentIndex != 0 || fa.segments[1].SegmentIndex != 2 {
		t.Errorf("unexpected segments sent %+v", fa.segments)
	}
	if windows[0].LinguisticFeatures == nil || windows[0].LinguisticFeatures.OralityScore != 10 {
		t.Errorf("window 0 not enriched: %+v", windows[0].LinguisticFeatures)
	}
	if windows[1].LinguisticFeatures != nil {
		t.Error("empty window must not be enriched")
	}
	if windows[2].LinguisticFeatures == nil || windows[2].LinguisticFeatures.OralityScore != 20 {
		t.Errorf("window 2 not enriched: %+v", windows[2].LinguisticFeatures)
	}
}

func TestEnrich_AnalyzerError(t *testing.T) {
	fa := &fakeAnalyzer{err: errors.New("connection refused")}
	windows := sampleWindows()

	out := Enrich(context.Background(), fa, windows, discardLogger())
	if !out.Attempted || out.Applied || out.Error != "connection refused" {
		t.Errorf("unexpected outcome %+v", out)
	}
	for _, w := range windows {
		if w.LinguisticFeatures != nil {
			t.Errorf("window %d enriched despite failure", w.Second)
		}
	}
}

func TestEnrich_HTTP500LeavesFeaturesNull(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	windows := sampleWindows()
	out := Enrich(context.Background(), NewClient(server.URL, time.Second), windows, discardLogger())
	if !out.Attempted || out.Applied {
		t.Errorf("expected attempted and not applied, got %+v", out)
	}
	for _, w := range windows {
		if w.LinguisticFeatures != nil {
			t.Errorf("window %d has features after HTTP 500", w.Second)
		}
	}
}

func TestEnrich_NilAnalyzer(t *testing.T) {
	windows := sampleWindows()
	out := Enrich(context.Background(), nil, windows, discardLogger())
	if out.Attempted || out.Applied {
		t.Errorf("unexpected outcome %+v", out)
	}
	if out.Error == "" {
		t.Error("expected not-configured error")
	}
}

func TestEnrich_NothingToAnalyse(t *testing.T) {
	fa := &fakeAnalyzer{}
	out := Enrich(context.Background(), fa, timeline.NewWindows(4), discardLogger())
	if out.Attempted || fa.calls != 0 {
		t.Errorf("expected no call, got outcome %+v and %d calls", out, fa.calls)
	}
}
