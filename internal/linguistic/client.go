package linguistic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/metronome/internal/timeline"
)

const DefaultTimeout = 30 * time.Second

// Client calls an external linguistic analysis service.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Analyze sends every segment in one request and returns the validated
// features keyed by segment index. Any deviation from the expected
// response shape is an error.
func (c *Client) Analyze(ctx context.Context, segments []Segment) (map[int]timeline.LinguisticFeatures, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(AnalysisRequest{Segments: segments})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var wr wireResponse
	if err := json.Unmarshal(respBody, &wr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return validate(wr, segments)
}

func validate(wr wireResponse, segments []Segment) (map[int]timeline.LinguisticFeatures, error) {
	if wr.Success == nil {
		return nil, errors.New("response missing success flag")
	}
	if !*wr.Success {
		return nil, fmt.Errorf("analysis unsuccessful: %s", wr.Error)
	}
	if wr.Results == nil {
		return nil, errors.New("response missing results")
	}

	requested := make(map[int]bool, len(segments))
	for _, s := range segments {
		requested[s.SegmentIndex] = true
	}

	out := make(map[int]timeline.LinguisticFeatures, len(wr.Results))
	for i, r := range wr.Results {
		switch {
		case r.SegmentIndex == nil:
			return nil, fmt.Errorf("result %d missing segment_index", i)
		case !requested[*r.SegmentIndex]:
			return nil, fmt.Errorf("result %d has unknown segment_index %d", i, *r.SegmentIndex)
		case r.OralityScore == nil || r.PartsOfSpeech == nil || r.ReadabilityScore == nil:
			return nil, fmt.Errorf("result for segment %d missing required features", *r.SegmentIndex)
		}
		if _, dup := out[*r.SegmentIndex]; dup {
			return nil, fmt.Errorf("duplicate result for segment %d", *r.SegmentIndex)
		}
		markers := r.DiscourseMarkers
		if markers == nil {
			markers = []string{}
		}
		out[*r.SegmentIndex] = timeline.LinguisticFeatures{
			OralityScore:       *r.OralityScore,
			PartsOfSpeech:      *r.PartsOfSpeech,
			DiscourseMarkers:   markers,
			ReadabilityScore:   *r.ReadabilityScore,
			ReadabilityMetrics: r.ReadabilityMetrics,
			LingFeatSummary:    r.LingFeatSummary,
		}
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
