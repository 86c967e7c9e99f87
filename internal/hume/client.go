package hume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/MikeSquared-Agency/metronome/internal/timeline"
)

const DefaultBaseURL = "https://api.hume.ai"

// Client reads finished batch-job predictions from the Hume API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchPredictions downloads the predictions of a completed batch job and
// converts them to timeline predictions.
func (c *Client) FetchPredictions(ctx context.Context, jobID string) ([]timeline.EmotionPrediction, error) {
	if jobID == "" {
		return nil, errors.New("empty job id")
	}
	url := fmt.Sprintf("%s/v0/batch/jobs/%s/predictions", c.baseURL, jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Hume-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, gjson.GetBytes(body, "message").String())
	}

	return ParsePredictions(body)
}

// ParsePredictions converts a batch predictions payload. Facial predictions
// are points at "time" seconds; prosody predictions span "time.begin" to
// "time.end". Records missing a time or emotions are skipped.
func ParsePredictions(body []byte) ([]timeline.EmotionPrediction, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("predictions payload is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, errors.New("predictions payload is not a JSON array")
	}

	preds := []timeline.EmotionPrediction{}
	for _, source := range root.Array() {
		for _, file := range source.Get("results.predictions").Array() {
			for _, group := range file.Get("models.face.grouped_predictions").Array() {
				for _, p := range group.Get("predictions").Array() {
					if pred, ok := facePrediction(p); ok {
						preds = append(preds, pred)
					}
				}
			}
			for _, group := range file.Get("models.prosody.grouped_predictions").Array() {
				for _, p := range group.Get("predictions").Array() {
					if pred, ok := prosodyPrediction(p); ok {
						preds = append(preds, pred)
					}
				}
			}
		}
	}
	return preds, nil
}

func facePrediction(p gjson.Result) (timeline.EmotionPrediction, bool) {
	t := p.Get("time")
	if t.Type != gjson.Number {
		return timeline.EmotionPrediction{}, false
	}
	emotions := parseEmotions(p.Get("emotions"))
	if len(emotions) == 0 {
		return timeline.EmotionPrediction{}, false
	}
	ms := secondsToMs(t.Float())
	pred := timeline.EmotionPrediction{
		ModelType:  timeline.ModelFace,
		StartMs:    ms,
		EndMs:      ms,
		Emotions:   emotions,
		TopEmotion: timeline.TopEmotion(emotions),
	}
	if box := p.Get("box"); box.IsObject() {
		pred.BoundingBox = &timeline.BoundingBox{
			X: box.Get("x").Float(),
			Y: box.Get("y").Float(),
			W: box.Get("w").Float(),
			H: box.Get("h").Float(),
		}
	}
	return pred, true
}

func prosodyPrediction(p gjson.Result) (timeline.EmotionPrediction, bool) {
	begin, end := p.Get("time.begin"), p.Get("time.end")
	if begin.Type != gjson.Number || end.Type != gjson.Number {
		return timeline.EmotionPrediction{}, false
	}
	emotions := parseEmotions(p.Get("emotions"))
	if len(emotions) == 0 {
		return timeline.EmotionPrediction{}, false
	}
	return timeline.EmotionPrediction{
		ModelType:  timeline.ModelProsody,
		StartMs:    secondsToMs(begin.Float()),
		EndMs:      secondsToMs(end.Float()),
		Emotions:   emotions,
		TopEmotion: timeline.TopEmotion(emotions),
	}, true
}

func parseEmotions(arr gjson.Result) []timeline.EmotionScore {
	var out []timeline.EmotionScore
	for _, e := range arr.Array() {
		name, score := e.Get("name"), e.Get("score")
		if name.Type != gjson.String || score.Type != gjson.Number {
			continue
		}
		out = append(out, timeline.EmotionScore{Name: name.String(), Score: score.Float()})
	}
	return out
}

func secondsToMs(s float64) int64 {
	return int64(math.Round(s * 1000))
}
