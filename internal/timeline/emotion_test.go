package timeline

import (
	"math"
	"testing"
)

func TestAggregateEmotions_MeansAndVolatility(t *testing.T) {
	preds := []EmotionPrediction{
		{ModelType: ModelFace, Emotions: []EmotionScore{{"A", 0.9}, {"B", 0.5}}, TopEmotion: EmotionScore{"A", 0.9}},
		{ModelType: ModelFace, Emotions: []EmotionScore{{"A", 0.7}, {"B", 0.3}}, TopEmotion: EmotionScore{"A", 0.7}},
	}

	got := AggregateEmotions(preds)
	if len(got.Top3) != 2 {
		t.Fatalf("expected 2 entries, got %+v", got.Top3)
	}
	if got.Top3[0] != (EmotionScore{"A", 0.8}) {
		t.Errorf("top3[0] = %+v, want {A 0.8}", got.Top3[0])
	}
	if got.Top3[1] != (EmotionScore{"B", 0.4}) {
		t.Errorf("top3[1] = %+v, want {B 0.4}", got.Top3[1])
	}
	if math.Abs(got.Volatility-0.1) > 1e-9 {
		t.Errorf("volatility = %v, want 0.1", got.Volatility)
	}
	if got.PredictionCount != 2 {
		t.Errorf("prediction count = %d", got.PredictionCount)
	}
}

func TestAggregateEmotions_Empty(t *testing.T) {
	got := AggregateEmotions(nil)
	if got.Top3 == nil || len(got.Top3) != 0 {
		t.Errorf("expected empty non-nil top3, got %#v", got.Top3)
	}
	if got.Volatility != 0 || got.PredictionCount != 0 {
		t.Errorf("unexpected summary %+v", got)
	}
}

func TestAggregateEmotions_SinglePredictionHasNoVolatility(t *testing.T) {
	got := AggregateEmotions([]EmotionPrediction{
		{Emotions: []EmotionScore{{"Joy", 0.66}}, TopEmotion: EmotionScore{"Joy", 0.66}},
	})
	if got.Volatility != 0 {
		t.Errorf("expected 0 volatility, got %v", got.Volatility)
	}
}

func TestAggregateEmotions_KeepsThreeHighest(t *testing.T) {
	got := AggregateEmotions([]EmotionPrediction{
		{Emotions: []EmotionScore{{"Joy", 0.1}, {"Awe", 0.5}, {"Anger", 0.2}, {"Calmness", 0.9}, {"Doubt", 0.5}}, TopEmotion: EmotionScore{"Calmness", 0.9}},
	})
	want := []EmotionScore{{"Calmness", 0.9}, {"Awe", 0.5}, {"Doubt", 0.5}}
	if len(got.Top3) != len(want) {
		t.Fatalf("top3 = %+v", got.Top3)
	}
	for i := range want {
		if got.Top3[i] != want[i] {
			t.Errorf("top3[%d] = %+v, want %+v", i, got.Top3[i], want[i])
		}
	}
}

func TestAggregateEmotions_VolatilityTracksTopScoreNotMeans(t *testing.T) {
	// Means rank Joy first, but volatility comes from each prediction's own top score.
	got := AggregateEmotions([]EmotionPrediction{
		{Emotions: []EmotionScore{{"Joy", 0.6}, {"Fear", 0.2}}, TopEmotion: EmotionScore{"Joy", 0.6}},
		{Emotions: []EmotionScore{{"Joy", 0.5}, {"Fear", 0.7}}, TopEmotion: EmotionScore{"Fear", 0.7}},
	})
	if got.Top3[0].Name != "Joy" {
		t.Errorf("expected Joy first by mean, got %+v", got.Top3)
	}
	if math.Abs(got.Volatility-0.05) > 1e-9 {
		t.Errorf("volatility = %v, want 0.05", got.Volatility)
	}
}

func TestTopEmotion(t *testing.T) {
	tests := []struct {
		name string
		in   []EmotionScore
		want EmotionScore
	}{
		{"empty", nil, EmotionScore{}},
		{"single", []EmotionScore{{"Joy", 0.2}}, EmotionScore{"Joy", 0.2}},
		{"first wins ties", []EmotionScore{{"Awe", 0.4}, {"Joy", 0.4}}, EmotionScore{"Awe", 0.4}},
		{"highest", []EmotionScore{{"Awe", 0.1}, {"Joy", 0.8}, {"Fear", 0.3}}, EmotionScore{"Joy", 0.8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TopEmotion(tt.in); got != tt.want {
				t.Errorf("TopEmotion = %+v, want %+v", got, tt.want)
			}
		})
	}
}
