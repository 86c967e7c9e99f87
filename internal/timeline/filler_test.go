package timeline

import (
	"reflect"
	"testing"
)

func TestDetectFillers(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantCount int
		want      []string
	}{
		{"example utterance", "Um, I think, like, this is it", 3, []string{"um", "i think", "like"}},
		{"empty", "", 0, []string{}},
		{"no fillers", "The quarterly numbers look solid", 0, []string{}},
		{"substrings ignored", "She was likely unlikely to umpire the ermine summit", 0, []string{}},
		{"case insensitive", "UH you KNOW, basically", 3, []string{"uh", "you know", "basically"}},
		{"repeats counted", "um um umm", 3, []string{"um", "um", "umm"}},
		{"multi-word across spaces", "it was kind  of  odd", 1, []string{"kind of"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectFillers(tt.text)
			if got.Count != tt.wantCount {
				t.Errorf("count = %d, want %d (%v)", got.Count, tt.wantCount, got.Instances)
			}
			if !reflect.DeepEqual(got.Instances, tt.want) {
				t.Errorf("instances = %#v, want %#v", got.Instances, tt.want)
			}
		})
	}
}

func TestDetectFillers_InstancesInVocabulary(t *testing.T) {
	vocab := map[string]bool{}
	for _, v := range FillerVocabulary {
		vocab[v] = true
	}
	got := DetectFillers("Hmm, I mean, er, it's sort of actually literally fine, I guess. Ah, mm.")
	if got.Count != 9 {
		t.Errorf("expected 9 fillers, got %d: %v", got.Count, got.Instances)
	}
	for _, inst := range got.Instances {
		if !vocab[inst] {
			t.Errorf("instance %q is not in the vocabulary", inst)
		}
	}
}
