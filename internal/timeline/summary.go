package timeline

import (
	"math"
	"sort"
)

const maxDominantEmotions = 5

// Summarize reduces the window sequence into whole-timeline statistics.
func Summarize(windows []Window, duration int) Summary {
	summary := Summary{DominantEmotions: []DominantEmotion{}}

	var wpmSum float64
	var speaking int
	var volSum float64
	var withEmotion int
	topCounts := map[string]int{}
	roleCounts := map[Role]int{}

	for _, w := range windows {
		if w.WordCount > 0 {
			wpmSum += float64(w.WordsPerMinute)
			speaking++
		}
		summary.TotalFillerWords += w.FillerWords.Count

		if emo := w.PrimaryEmotions(); emo != nil {
			volSum += emo.Volatility
			withEmotion++
			if len(emo.Top3) > 0 {
				topCounts[emo.Top3[0].Name]++
			}
		}
		if w.Speaker != nil {
			roleCounts[*w.Speaker]++
		}
	}

	if speaking > 0 {
		summary.AverageWPM = round(wpmSum/float64(speaking), 2)
	}
	if withEmotion > 0 {
		summary.AvgEmotionVolatility = round(volSum/float64(withEmotion), 3)
	}
	if duration <= 0 {
		return summary
	}

	for name, n := range topCounts {
		summary.DominantEmotions = append(summary.DominantEmotions, DominantEmotion{
			Name:       name,
			Percentage: round(float64(n)*100/float64(duration), 2),
		})
	}
	sort.Slice(summary.DominantEmotions, func(i, j int) bool {
		a, b := summary.DominantEmotions[i], summary.DominantEmotions[j]
		if a.Percentage != b.Percentage {
			return a.Percentage > b.Percentage
		}
		return a.Name < b.Name
	})
	if len(summary.DominantEmotions) > maxDominantEmotions {
		summary.DominantEmotions = summary.DominantEmotions[:maxDominantEmotions]
	}

	summary.UserSpeakingPercentage = percent(roleCounts[RoleUser], duration)
	summary.AgentSpeakingPercentage = percent(roleCounts[RoleAgent], duration)
	return summary
}

func percent(n, total int) int {
	return int(math.Round(float64(n) * 100 / float64(total)))
}
