package linguistic

import "github.com/MikeSquared-Agency/metronome/internal/timeline"

// Segment is one window's text sent for analysis.
type Segment struct {
	SegmentIndex int    `json:"segment_index"`
	Text         string `json:"text"`
}

// AnalysisRequest is the body of POST /analyze.
type AnalysisRequest struct {
	Segments []Segment `json:"segments"`
}

// SegmentResult is one analysed segment as served by /analyze.
type SegmentResult struct {
	SegmentIndex int    `json:"segment_index"`
	Text         string `json:"text"`
	timeline.LinguisticFeatures
}

// AnalysisResponse is the body returned by /analyze.
type AnalysisResponse struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Results []SegmentResult `json:"results"`
}

// wireResult mirrors SegmentResult with pointers so missing required
// fields can be told apart from zero values.
type wireResult struct {
	SegmentIndex       *int                         `json:"segment_index"`
	OralityScore       *float64                     `json:"orality_score"`
	PartsOfSpeech      *timeline.PartsOfSpeech      `json:"parts_of_speech"`
	DiscourseMarkers   []string                     `json:"discourse_markers"`
	ReadabilityScore   *float64                     `json:"readability_score"`
	ReadabilityMetrics *timeline.ReadabilityMetrics `json:"readability_metrics"`
	LingFeatSummary    *timeline.LingFeatSummary    `json:"lingfeat_summary"`
}

type wireResponse struct {
	Success *bool        `json:"success"`
	Error   string       `json:"error"`
	Results []wireResult `json:"results"`
}
