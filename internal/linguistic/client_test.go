package linguistic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var twoSegments = []Segment{
	{SegmentIndex: 0, Text: "hello there"},
	{SegmentIndex: 2, Text: "um I think so"},
}

func TestAnalyze_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/analyze" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req AnalysisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Segments) != 2 || req.Segments[1].SegmentIndex != 2 {
			t.Errorf("unexpected segments %+v", req.Segments)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success": true, "results": [
			{"segment_index": 0, "text": "hello there", "orality_score": 42.5,
			 "parts_of_speech": {"nouns": 0, "verbs": 0, "adjectives": 0, "adverbs": 1, "pronouns": 0, "prepositions": 0, "conjunctions": 0, "interjections": 1},
			 "discourse_markers": [], "readability_score": 88.1},
			{"segment_index": 2, "text": "um I think so", "orality_score": 75,
			 "parts_of_speech": {"nouns": 0, "verbs": 1, "adjectives": 0, "adverbs": 0, "pronouns": 1, "prepositions": 0, "conjunctions": 1, "interjections": 1},
			 "discourse_markers": ["i think", "so"], "readability_score": 100,
			 "readability_metrics": {"flesch_reading_ease": 117.16}}
		]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", time.Second)
	features, err := c.Analyze(context.Background(), twoSegments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("expected 2 results, got %d", len(features))
	}
	if features[0].OralityScore != 42.5 || features[0].PartsOfSpeech.Adverbs != 1 {
		t.Errorf("unexpected features for segment 0: %+v", features[0])
	}
	if got := features[2].DiscourseMarkers; len(got) != 2 || got[0] != "i think" {
		t.Errorf("unexpected markers %v", got)
	}
	if features[2].ReadabilityMetrics == nil || features[2].ReadabilityMetrics.FleschReadingEase != 117.16 {
		t.Errorf("expected readability metrics, got %+v", features[2].ReadabilityMetrics)
	}
}

func TestAnalyze_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"detail":"boom"}`},
		{"malformed json", http.StatusOK, `{"success": true, "results": [`},
		{"unsuccessful", http.StatusOK, `{"success": false, "error": "model not loaded", "results": []}`},
		{"missing success", http.StatusOK, `{"results": []}`},
		{"missing results", http.StatusOK, `{"success": true}`},
		{"unknown index", http.StatusOK, `{"success": true, "results": [
			{"segment_index": 7, "orality_score": 1, "parts_of_speech": {}, "readability_score": 1}]}`},
		{"missing parts of speech", http.StatusOK, `{"success": true, "results": [
			{"segment_index": 0, "orality_score": 1, "readability_score": 1}]}`},
		{"missing segment index", http.StatusOK, `{"success": true, "results": [
			{"orality_score": 1, "parts_of_speech": {}, "readability_score": 1}]}`},
		{"duplicate index", http.StatusOK, `{"success": true, "results": [
			{"segment_index": 0, "orality_score": 1, "parts_of_speech": {}, "readability_score": 1},
			{"segment_index": 0, "orality_score": 2, "parts_of_speech": {}, "readability_score": 2}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(server.URL, time.Second)
			if _, err := c.Analyze(context.Background(), twoSegments); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestAnalyze_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := NewClient(server.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := c.Analyze(context.Background(), twoSegments)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Errorf("timeout not enforced, took %v", time.Since(start))
	}
}

func TestAnalyze_AgainstLocalServer(t *testing.T) {
	server := httptest.NewServer(NewServer(0).Handler())
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	features, err := c.Analyze(context.Background(), twoSegments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := features[0]; !ok {
		t.Error("missing segment 0")
	}
	if f, ok := features[2]; !ok || !strings.Contains(strings.Join(f.DiscourseMarkers, ","), "i think") {
		t.Errorf("expected 'i think' marker for segment 2, got %+v", f)
	}
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient("http://localhost:8000", 0)
	if c.timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", c.timeout)
	}
}
