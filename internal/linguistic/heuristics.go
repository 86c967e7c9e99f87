package linguistic

import (
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"

	"github.com/MikeSquared-Agency/metronome/internal/timeline"
)

// DiscourseMarkers recognised by the local analyzer.
var DiscourseMarkers = []string{
	// additive
	"also", "and", "besides", "furthermore", "moreover", "additionally", "plus",
	// contrastive
	"but", "however", "although", "though", "yet", "still", "nevertheless", "nonetheless",
	"on the other hand", "in contrast", "conversely",
	// causal
	"because", "since", "therefore", "thus", "so", "hence", "consequently", "as a result",
	// temporal
	"then", "first", "next", "finally", "meanwhile", "afterwards", "previously", "subsequently",
	// topic
	"well", "now", "okay", "right", "anyway", "actually", "basically",
	// hedging
	"like", "sort of", "kind of", "i think", "i guess", "maybe", "perhaps", "probably",
	// response
	"yes", "yeah", "no", "sure", "absolutely",
}

var markerPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(DiscourseMarkers))
	for _, marker := range DiscourseMarkers {
		m[marker] = regexp.MustCompile(`\b` + regexp.QuoteMeta(marker) + `\b`)
	}
	return m
}()

var (
	personalPronouns = wordSet("i", "you", "we", "me", "my", "your", "our")
	contractions     = []string{"'m", "'re", "'ve", "'ll", "'d", "n't", "'s"}

	sentenceEnd = regexp.MustCompile(`[.!?]+`)
	vowelGroup  = regexp.MustCompile(`[aeiouy]+`)
)

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// AnalyzeText computes heuristic linguistic features for one segment.
func AnalyzeText(text string) timeline.LinguisticFeatures {
	text = strings.TrimSpace(text)
	markers := ExtractDiscourseMarkers(text)
	score, metrics := Readability(text)
	return timeline.LinguisticFeatures{
		OralityScore:       roundTo(Orality(text), 2),
		PartsOfSpeech:      TagPartsOfSpeech(text),
		DiscourseMarkers:   markers,
		ReadabilityScore:   roundTo(score, 2),
		ReadabilityMetrics: &metrics,
		LingFeatSummary:    lexicalSummary(text),
	}
}

// ExtractDiscourseMarkers returns the markers present in text, sorted.
func ExtractDiscourseMarkers(text string) []string {
	lower := strings.ToLower(text)
	found := []string{}
	seen := map[string]bool{}
	for _, marker := range DiscourseMarkers {
		if seen[marker] || !strings.Contains(lower, marker) {
			continue
		}
		if markerPatterns[marker].MatchString(lower) {
			found = append(found, marker)
			seen[marker] = true
		}
	}
	sort.Strings(found)
	return found
}

// Orality scores how spoken-like text is, 0 (written) to 100 (spoken).
// Four indicators contribute up to 25 points each: discourse marker
// density, personal pronoun density, short words and contractions.
// Marker density counts substring occurrences, so "understand" counts "and".
func Orality(text string) float64 {
	lower := strings.ToLower(text)
	words := strings.Fields(lower)
	if len(words) == 0 {
		return 50
	}
	n := float64(len(words))

	var markerCount int
	for _, marker := range DiscourseMarkers {
		if strings.Contains(lower, marker) {
			markerCount++
		}
	}

	var points float64
	points += math.Min(float64(markerCount)/n*100*5, 25)

	var pronounCount, letters int
	for _, w := range words {
		if personalPronouns[w] {
			pronounCount++
		}
		letters += len(w)
	}
	points += math.Min(float64(pronounCount)/n*100*3, 25)

	switch avg := float64(letters) / n; {
	case avg < 4:
		points += 25
	case avg < 5:
		points += 15
	case avg < 6:
		points += 5
	}

	var found int
	for _, c := range contractions {
		if strings.Contains(lower, c) {
			found++
		}
	}
	points += math.Min(float64(found)*5, 25)

	return points
}

// TagPartsOfSpeech tags every token and counts the open and closed
// word classes. Tagging failures yield zero counts.
func TagPartsOfSpeech(text string) timeline.PartsOfSpeech {
	var pos timeline.PartsOfSpeech
	if strings.TrimSpace(text) == "" {
		return pos
	}
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		slog.Warn("part-of-speech tagging failed", "error", err)
		return pos
	}
	for _, tok := range doc.Tokens() {
		countTag(&pos, tok.Tag)
	}
	return pos
}

// countTag maps a Penn Treebank tag onto its word class.
func countTag(pos *timeline.PartsOfSpeech, tag string) {
	switch {
	case strings.HasPrefix(tag, "NN"):
		pos.Nouns++
	case strings.HasPrefix(tag, "VB"), tag == "MD":
		pos.Verbs++
	case strings.HasPrefix(tag, "JJ"):
		pos.Adjectives++
	case strings.HasPrefix(tag, "RB"), tag == "WRB":
		pos.Adverbs++
	case strings.HasPrefix(tag, "PRP"), strings.HasPrefix(tag, "WP"):
		pos.Pronouns++
	case tag == "IN", tag == "TO":
		pos.Prepositions++
	case tag == "CC":
		pos.Conjunctions++
	case tag == "UH":
		pos.Interjections++
	}
}

// Readability returns the Flesch reading ease clamped to 0..100 and the
// full set of classic readability indices.
func Readability(text string) (float64, timeline.ReadabilityMetrics) {
	words := tokenize(text)
	if len(words) == 0 {
		return 0, timeline.ReadabilityMetrics{}
	}
	w := float64(len(words))
	s := float64(max(1, len(sentenceEnd.FindAllString(text, -1))))

	var syllables, complexWords, letters int
	for _, word := range words {
		n := countSyllables(word)
		syllables += n
		if n >= 3 {
			complexWords++
		}
		letters += countLetters(word)
	}
	syl := float64(syllables)
	wps := w / s

	m := timeline.ReadabilityMetrics{
		FleschReadingEase:         roundTo(206.835-1.015*wps-84.6*(syl/w), 2),
		FleschKincaidGrade:        roundTo(0.39*wps+11.8*(syl/w)-15.59, 2),
		GunningFog:                roundTo(0.4*(wps+100*float64(complexWords)/w), 2),
		SmogIndex:                 roundTo(1.043*math.Sqrt(float64(complexWords)*(30/s))+3.1291, 2),
		AutomatedReadabilityIndex: roundTo(4.71*(float64(letters)/w)+0.5*wps-21.43, 2),
		ColemanLiauIndex:          roundTo(0.0588*(float64(letters)/w*100)-0.296*(s/w*100)-15.8, 2),
	}
	return math.Max(0, math.Min(100, m.FleschReadingEase)), m
}

func lexicalSummary(text string) *timeline.LingFeatSummary {
	words := tokenize(text)
	if len(words) == 0 {
		return nil
	}
	unique := map[string]bool{}
	var letters int
	for _, w := range words {
		unique[w] = true
		letters += countLetters(w)
	}
	n := float64(len(words))
	sentences := float64(max(1, len(sentenceEnd.FindAllString(text, -1))))
	return &timeline.LingFeatSummary{
		LexicalDiversity:   roundTo(float64(len(unique))/n, 3),
		AvgWordLength:      roundTo(float64(letters)/n, 2),
		SentenceComplexity: roundTo(n/sentences, 2),
	}
}

// tokenize lowercases text and splits it into words, keeping apostrophes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func countSyllables(word string) int {
	word = strings.Trim(word, "'")
	n := len(vowelGroup.FindAllString(word, -1))
	if n > 1 && strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") {
		n--
	}
	return max(1, n)
}

func countLetters(word string) int {
	var n int
	for _, r := range word {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func roundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
