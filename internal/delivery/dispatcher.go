package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/metronome/internal/timeline"
)

const DefaultTimeout = 10 * time.Second

// Outcome records one webhook hand-off. It is stamped into the result
// metadata and never surfaced as an error.
type Outcome struct {
	Attempted  bool
	Delivered  bool
	StatusCode int
	Error      string
}

// Dispatcher posts assembled timelines to a downstream webhook.
type Dispatcher struct {
	url     string
	timeout time.Duration
	client  *http.Client
	logger  *slog.Logger
}

func NewDispatcher(url string, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		url:     url,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Deliver POSTs the full result as JSON. Any 2xx counts as delivered.
// An empty URL means delivery is disabled and nothing is attempted.
func (d *Dispatcher) Deliver(ctx context.Context, result *timeline.Result) Outcome {
	if d.url == "" {
		return Outcome{}
	}
	out := Outcome{Attempted: true}

	if err := d.post(ctx, result, &out); err != nil {
		out.Error = err.Error()
		d.logger.Warn("timeline webhook delivery failed",
			"conversation_id", result.ConversationID,
			"status", out.StatusCode,
			"error", err,
		)
		return out
	}

	out.Delivered = true
	d.logger.Info("timeline delivered",
		"conversation_id", result.ConversationID,
		"build_id", result.Metadata.BuildID,
		"status", out.StatusCode,
	)
	return out
}

func (d *Dispatcher) post(ctx context.Context, result *timeline.Result, out *Outcome) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("X-Metronome-Build-Id", result.Metadata.BuildID.String())

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()

	out.StatusCode = resp.StatusCode
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook error %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
