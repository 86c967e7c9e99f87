package timeline

import (
	"math"
	"sort"
)

// AggregateEmotions summarises the predictions of one modality that fell
// into a window. Top3 ranks named emotions by their mean score; Volatility
// is the population standard deviation of each prediction's own top score.
func AggregateEmotions(preds []EmotionPrediction) EmotionSummary {
	summary := EmotionSummary{Top3: []EmotionScore{}, PredictionCount: len(preds)}
	if len(preds) == 0 {
		return summary
	}

	sums := map[string]float64{}
	for _, p := range preds {
		for _, e := range p.Emotions {
			sums[e.Name] += e.Score
		}
	}
	n := float64(len(preds))
	means := make([]EmotionScore, 0, len(sums))
	for name, sum := range sums {
		means = append(means, EmotionScore{Name: name, Score: sum / n})
	}
	sort.Slice(means, func(i, j int) bool {
		if means[i].Score != means[j].Score {
			return means[i].Score > means[j].Score
		}
		return means[i].Name < means[j].Name
	})
	if len(means) > 3 {
		means = means[:3]
	}
	for _, m := range means {
		summary.Top3 = append(summary.Top3, EmotionScore{Name: m.Name, Score: round(m.Score, 3)})
	}

	tops := make([]float64, len(preds))
	for i, p := range preds {
		tops[i] = p.TopEmotion.Score
	}
	summary.Volatility = round(stddev(tops), 3)
	return summary
}

// TopEmotion returns the highest-scoring entry, first wins on ties.
func TopEmotion(emotions []EmotionScore) EmotionScore {
	var top EmotionScore
	for i, e := range emotions {
		if i == 0 || e.Score > top.Score {
			top = e
		}
	}
	return top
}

// stddev is the population standard deviation; 0 for fewer than two values.
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}
	return math.Sqrt(sq / float64(len(xs)))
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
