package timeline

import (
	"math"
	"strings"
)

// Bucket assigns items to 1-second buckets spanning [0, duration).
// secondOf reports the bucket for an item; items it rejects, or whose
// second falls outside the range, are dropped. The returned slice has
// one entry per second, items kept in input order.
func Bucket[T any](duration int, items []T, secondOf func(T) (int, bool)) [][]T {
	duration = ClampDuration(duration)
	if duration == 0 {
		return [][]T{}
	}
	buckets := make([][]T, duration)
	for _, item := range items {
		s, ok := secondOf(item)
		if !ok || s < 0 || s >= duration {
			continue
		}
		buckets[s] = append(buckets[s], item)
	}
	return buckets
}

// TranscriptSecond maps an utterance to floor(offset_seconds).
func TranscriptSecond(ev TranscriptEvent) (int, bool) {
	off := ev.OffsetSeconds
	if math.IsNaN(off) || math.IsInf(off, 0) || off < 0 || off >= math.MaxInt32 {
		return 0, false
	}
	return int(math.Floor(off)), true
}

// PredictionSecond maps a prediction to the second its range starts in.
// Ranges crossing a second boundary are not split.
func PredictionSecond(p EmotionPrediction) (int, bool) {
	if p.StartMs < 0 || p.StartMs/1000 >= math.MaxInt32 {
		return 0, false
	}
	return int(p.StartMs / 1000), true
}

// Counts tallies the records consumed and dropped while building windows.
type Counts struct {
	TranscriptEvents            int
	TranscriptEventsDiscarded   int
	EmotionPredictions          int
	EmotionPredictionsDiscarded int
}

// MaxDurationSeconds bounds the timeline length. Longer durations are
// treated as corrupt and clamped.
const MaxDurationSeconds = 24 * 60 * 60

// ClampDuration normalises a stored duration into [0, MaxDurationSeconds].
func ClampDuration(duration int) int {
	return min(max(duration, 0), MaxDurationSeconds)
}

// NewWindows returns duration empty windows indexed 0..duration-1.
func NewWindows(duration int) []Window {
	duration = ClampDuration(duration)
	if duration == 0 {
		return []Window{}
	}
	windows := make([]Window, duration)
	for i := range windows {
		windows[i] = Window{
			Second:      i,
			FillerWords: FillerWords{Instances: []string{}},
		}
	}
	return windows
}

// BuildWindows buckets the transcript and predictions into per-second
// windows and fills every derived per-window field except linguistic
// features.
func BuildWindows(duration int, events []TranscriptEvent, preds []EmotionPrediction) ([]Window, Counts) {
	duration = ClampDuration(duration)
	windows := NewWindows(duration)
	counts := Counts{
		TranscriptEvents:   len(events),
		EmotionPredictions: len(preds),
	}

	kept := 0
	for s, bucket := range Bucket(duration, events, TranscriptSecond) {
		for _, ev := range bucket {
			windows[s].addUtterance(ev)
			kept++
		}
	}
	counts.TranscriptEventsDiscarded = len(events) - kept

	for i := range windows {
		w := &windows[i]
		w.WordCount = len(strings.Fields(w.Text))
		w.WordsPerMinute = w.WordCount * 60
		w.FillerWords = DetectFillers(w.Text)
	}

	byModel := map[ModelType][]EmotionPrediction{}
	for _, p := range preds {
		if p.ModelType.Valid() {
			byModel[p.ModelType] = append(byModel[p.ModelType], p)
		}
	}

	kept = 0
	for s, bucket := range Bucket(duration, byModel[ModelFace], PredictionSecond) {
		if len(bucket) > 0 {
			summary := AggregateEmotions(bucket)
			windows[s].FaceEmotions = &summary
			kept += len(bucket)
		}
	}
	for s, bucket := range Bucket(duration, byModel[ModelProsody], PredictionSecond) {
		if len(bucket) > 0 {
			summary := AggregateEmotions(bucket)
			windows[s].ProsodyEmotions = &summary
			kept += len(bucket)
		}
	}
	counts.EmotionPredictionsDiscarded = len(preds) - kept

	return windows, counts
}

func (w *Window) addUtterance(ev TranscriptEvent) {
	if ev.Role == RoleUser || ev.Role == RoleAgent {
		role := ev.Role
		w.Speaker = &role
	}
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}
	if w.Text == "" {
		w.Text = text
		return
	}
	w.Text += " " + text
}
