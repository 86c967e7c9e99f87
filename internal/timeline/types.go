package timeline

import (
	"time"

	"github.com/google/uuid"
)

// Role is the speaker role attached to a transcript event.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// ModelType identifies the emotion-prediction modality.
type ModelType string

const (
	ModelFace    ModelType = "face"
	ModelProsody ModelType = "prosody"
)

// Valid reports whether the model type is one the timeline aggregates.
func (m ModelType) Valid() bool {
	return m == ModelFace || m == ModelProsody
}

// TranscriptEvent is one utterance, offset from conversation start.
type TranscriptEvent struct {
	Role          Role    `json:"role"`
	Text          string  `json:"text"`
	OffsetSeconds float64 `json:"offset_seconds"`
}

// EmotionScore is a named emotion with its score in [0,1].
type EmotionScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// BoundingBox locates a face in a video frame. Facial predictions only.
type BoundingBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// EmotionPrediction is one inference result over [StartMs, EndMs].
// Point predictions have StartMs == EndMs.
type EmotionPrediction struct {
	ModelType   ModelType      `json:"model_type"`
	StartMs     int64          `json:"start_ms"`
	EndMs       int64          `json:"end_ms"`
	Emotions    []EmotionScore `json:"emotions"`
	TopEmotion  EmotionScore   `json:"top_emotion"`
	BoundingBox *BoundingBox   `json:"bounding_box,omitempty"`
}

// EmotionSummary aggregates one modality's predictions within a window.
type EmotionSummary struct {
	Top3            []EmotionScore `json:"top3"`
	Volatility      float64        `json:"volatility"`
	PredictionCount int            `json:"prediction_count"`
}

// FillerWords lists the disfluency markers found in a window's text.
type FillerWords struct {
	Count     int      `json:"count"`
	Instances []string `json:"instances"`
}

// PartsOfSpeech holds per-category token counts.
type PartsOfSpeech struct {
	Nouns         int `json:"nouns"`
	Verbs         int `json:"verbs"`
	Adjectives    int `json:"adjectives"`
	Adverbs       int `json:"adverbs"`
	Pronouns      int `json:"pronouns"`
	Prepositions  int `json:"prepositions"`
	Conjunctions  int `json:"conjunctions"`
	Interjections int `json:"interjections"`
}

type ReadabilityMetrics struct {
	FleschReadingEase         float64 `json:"flesch_reading_ease"`
	FleschKincaidGrade        float64 `json:"flesch_kincaid_grade"`
	GunningFog                float64 `json:"gunning_fog"`
	SmogIndex                 float64 `json:"smog_index"`
	AutomatedReadabilityIndex float64 `json:"automated_readability_index"`
	ColemanLiauIndex          float64 `json:"coleman_liau_index"`
}

type LingFeatSummary struct {
	LexicalDiversity   float64 `json:"lexical_diversity"`
	AvgWordLength      float64 `json:"avg_word_length"`
	SentenceComplexity float64 `json:"sentence_complexity"`
}

// LinguisticFeatures are the externally computed text features of a window.
type LinguisticFeatures struct {
	OralityScore       float64             `json:"orality_score"`
	PartsOfSpeech      PartsOfSpeech       `json:"parts_of_speech"`
	DiscourseMarkers   []string            `json:"discourse_markers"`
	ReadabilityScore   float64             `json:"readability_score"`
	ReadabilityMetrics *ReadabilityMetrics `json:"readability_metrics,omitempty"`
	LingFeatSummary    *LingFeatSummary    `json:"lingfeat_summary,omitempty"`
}

// Window is one second of the timeline.
type Window struct {
	Second             int                 `json:"second"`
	Speaker            *Role               `json:"speaker"`
	Text               string              `json:"text"`
	WordCount          int                 `json:"word_count"`
	WordsPerMinute     int                 `json:"words_per_minute"`
	FaceEmotions       *EmotionSummary     `json:"face_emotions"`
	ProsodyEmotions    *EmotionSummary     `json:"prosody_emotions"`
	FillerWords        FillerWords         `json:"filler_words"`
	LinguisticFeatures *LinguisticFeatures `json:"linguistic_features"`
}

// PrimaryEmotions returns the summary used for whole-timeline emotion
// statistics: face when present, otherwise prosody.
func (w Window) PrimaryEmotions() *EmotionSummary {
	if w.FaceEmotions != nil {
		return w.FaceEmotions
	}
	return w.ProsodyEmotions
}

// DominantEmotion is an emotion with the share of windows it topped.
type DominantEmotion struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// Summary reduces the full window sequence.
type Summary struct {
	AverageWPM              float64           `json:"average_wpm"`
	TotalFillerWords        int               `json:"total_filler_words"`
	DominantEmotions        []DominantEmotion `json:"dominant_emotions"`
	AvgEmotionVolatility    float64           `json:"avg_emotion_volatility"`
	UserSpeakingPercentage  int               `json:"user_speaking_percentage"`
	AgentSpeakingPercentage int               `json:"agent_speaking_percentage"`
}

// Emotion sources recorded in Metadata.EmotionSource.
const (
	EmotionSourceDatabase = "database"
	EmotionSourceLive     = "live"
	EmotionSourceNone     = "none"
)

// Metadata records how a build ran.
type Metadata struct {
	BuildID                     uuid.UUID `json:"build_id"`
	BuiltAt                     time.Time `json:"built_at"`
	TranscriptEvents            int       `json:"transcript_events"`
	TranscriptEventsDiscarded   int       `json:"transcript_events_discarded"`
	EmotionPredictions          int       `json:"emotion_predictions"`
	EmotionPredictionsDiscarded int       `json:"emotion_predictions_discarded"`
	EmotionSource               string    `json:"emotion_source"`
	EmotionSourceError          string    `json:"emotion_source_error,omitempty"`
	EmotionsPersisted           bool      `json:"emotions_persisted"`
	LinguisticAnalysisAttempted bool      `json:"linguistic_analysis_attempted"`
	LinguisticAnalysisRan       bool      `json:"linguistic_analysis_ran"`
	LinguisticSegments          int       `json:"linguistic_segments"`
	LinguisticError             string    `json:"linguistic_error,omitempty"`
	WebhookAttempted            bool      `json:"webhook_attempted"`
	WebhookDelivered            bool      `json:"webhook_delivered"`
	WebhookStatus               int       `json:"webhook_status,omitempty"`
	WebhookError                string    `json:"webhook_error,omitempty"`
}

// Result is the assembled per-second timeline of one conversation.
type Result struct {
	ConversationID  string   `json:"conversation_id"`
	DurationSeconds int      `json:"duration_seconds"`
	Timeline        []Window `json:"timeline"`
	Summary         Summary  `json:"summary"`
	Metadata        Metadata `json:"metadata"`
}
