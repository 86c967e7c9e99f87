package timeline

import (
	"bytes"
	"errors"
	"math"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	textFields   = []string{"text", "message", "content"}
	offsetFields = []string{"offset_seconds", "offsetSeconds", "time_in_call_secs", "timestamp", "offset"}
)

// ParseRole normalises upstream role labels onto the closed role set.
// Unknown labels map to the empty role.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "human":
		return RoleUser
	case "agent", "assistant", "ai", "bot":
		return RoleAgent
	default:
		return ""
	}
}

// ParseTranscript decodes a stored transcript. Nested arrays (the
// transcript is sometimes double-wrapped upstream) are flattened in order.
// Events without a usable offset get a NaN offset so bucketing drops them.
func ParseTranscript(raw []byte) ([]TranscriptEvent, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []TranscriptEvent{}, nil
	}
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("transcript is not valid JSON")
	}
	root := gjson.ParseBytes(raw)
	if root.Type == gjson.Null {
		return []TranscriptEvent{}, nil
	}
	if !root.IsArray() {
		return nil, errors.New("transcript is not a JSON array")
	}

	events := []TranscriptEvent{}
	var walk func(arr gjson.Result)
	walk = func(arr gjson.Result) {
		arr.ForEach(func(_, v gjson.Result) bool {
			switch {
			case v.IsArray():
				walk(v)
			case v.IsObject():
				events = append(events, parseEvent(v))
			}
			return true
		})
	}
	walk(root)
	return events, nil
}

func parseEvent(v gjson.Result) TranscriptEvent {
	ev := TranscriptEvent{
		Role:          ParseRole(v.Get("role").String()),
		OffsetSeconds: math.NaN(),
	}
	for _, f := range textFields {
		if r := v.Get(f); r.Type == gjson.String {
			ev.Text = r.String()
			break
		}
	}
	for _, f := range offsetFields {
		if r := v.Get(f); r.Type == gjson.Number {
			ev.OffsetSeconds = r.Float()
			break
		}
	}
	return ev
}
