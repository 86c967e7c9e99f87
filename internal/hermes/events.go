package hermes

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// SubjectConversationEnded triggers a timeline build.
	SubjectConversationEnded = "swarm.conversation.ended"
	// SubjectTimelineBuilt is published after every completed build.
	SubjectTimelineBuilt = "swarm.timeline.built"
	SubjectRegistered    = "swarm.agent.metronome.registered"
)

// ConversationEndedEvent is the payload of SubjectConversationEnded.
type ConversationEndedEvent struct {
	ConversationID string `json:"conversation_id"`
}

// TimelineBuiltEvent is the payload of SubjectTimelineBuilt.
type TimelineBuiltEvent struct {
	ConversationID        string `json:"conversation_id"`
	BuildID               string `json:"build_id"`
	DurationSeconds       int    `json:"duration_seconds"`
	LinguisticAnalysisRan bool   `json:"linguistic_analysis_ran"`
	WebhookDelivered      bool   `json:"webhook_delivered"`
}

// RegisteredEvent announces the agent on start-up.
type RegisteredEvent struct {
	Agent     string    `json:"agent"`
	Port      int       `json:"port"`
	Subjects  []string  `json:"subjects"`
	StartedAt time.Time `json:"started_at"`
}

// ParseConversationEnded decodes and validates a conversation-ended payload.
func ParseConversationEnded(data []byte) (ConversationEndedEvent, error) {
	var ev ConversationEndedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal conversation ended: %w", err)
	}
	ev.ConversationID = strings.TrimSpace(ev.ConversationID)
	if ev.ConversationID == "" {
		return ev, errors.New("conversation ended event missing conversation_id")
	}
	return ev, nil
}
