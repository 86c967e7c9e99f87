package timeline

import (
	"regexp"
	"strings"
)

// FillerVocabulary is the fixed set of disfluency markers. Multi-word
// entries come first so they win over any single-word prefix.
var FillerVocabulary = []string{
	"you know", "i mean", "i think", "i guess", "sort of", "kind of",
	"umm", "um", "uhh", "uh", "erm", "er", "ah", "hmm", "mm",
	"like", "basically", "actually", "literally",
}

var fillerPattern = compileFillers(FillerVocabulary)

func compileFillers(vocab []string) *regexp.Regexp {
	alts := make([]string, len(vocab))
	for i, term := range vocab {
		alts[i] = strings.ReplaceAll(regexp.QuoteMeta(term), " ", `\s+`)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
}

// DetectFillers finds whole-word filler markers in text, case-insensitively.
func DetectFillers(text string) FillerWords {
	out := FillerWords{Instances: []string{}}
	if text == "" {
		return out
	}
	for _, m := range fillerPattern.FindAllString(text, -1) {
		out.Instances = append(out.Instances, strings.Join(strings.Fields(strings.ToLower(m)), " "))
	}
	out.Count = len(out.Instances)
	return out
}
