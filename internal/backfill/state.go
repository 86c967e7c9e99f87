package backfill

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const DefaultStatePath = "~/.metronome/backfill-state.json"

// BackfillState tracks progress for resumable backfill runs.
type BackfillState struct {
	StartedAt              time.Time `json:"started_at"`
	LastProcessedAt        time.Time `json:"last_processed_at"`
	ConversationsProcessed []string  `json:"conversations_processed"`
	ConversationsRemaining int       `json:"conversations_remaining"`
	LinguisticApplied      int       `json:"linguistic_applied"`
	WebhooksDelivered      int       `json:"webhooks_delivered"`
	Errors                 []string  `json:"errors"`

	path      string // not serialized
	processed map[string]bool
}

// LoadState loads the backfill state from path (DefaultStatePath when
// empty), or creates a new one.
func LoadState(path string) (*BackfillState, error) {
	if path == "" {
		path = DefaultStatePath
	}
	p := expandHome(path)

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return &BackfillState{
				StartedAt: time.Now().UTC(),
				path:      p,
			}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s BackfillState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	s.path = p
	return &s, nil
}

// Save persists the state to disk.
func (s *BackfillState) Save() error {
	s.LastProcessedAt = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return os.WriteFile(s.path, data, 0o644)
}

// IsProcessed returns true if the conversation has already been built.
func (s *BackfillState) IsProcessed(id string) bool {
	if s.processed == nil {
		s.processed = make(map[string]bool, len(s.ConversationsProcessed))
		for _, c := range s.ConversationsProcessed {
			s.processed[c] = true
		}
	}
	return s.processed[id]
}

// MarkProcessed records a conversation as built.
func (s *BackfillState) MarkProcessed(id string) {
	if s.IsProcessed(id) {
		return
	}
	s.ConversationsProcessed = append(s.ConversationsProcessed, id)
	s.processed[id] = true
}

// AddError records a processing error.
func (s *BackfillState) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
