package feedback

import (
	"testing"

	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/score"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		acc  float64
		want model.Tier
	}{
		{100, model.Excellent},
		{90, model.Excellent},
		{89.99, model.Good},
		{75, model.Good},
		{70, model.Good},
		{69.9, model.Fair},
		{50, model.Fair},
		{49.99, model.NeedsImprovement},
		{0, model.NeedsImprovement},
	}
	for _, tt := range tests {
		if got := TierFor(tt.acc); got != tt.want {
			t.Fatalf("TierFor(%v) = %v, want %v", tt.acc, got, tt.want)
		}
	}
}

func TestGeneratePerfect(t *testing.T) {
	msg, tier := Generate(score.Compare("the quick brown fox", "the quick brown fox"))
	if tier != model.Excellent {
		t.Fatalf("tier = %v, want excellent", tier)
	}
	if msg != "Excellent! Your speech closely matches the text." {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestGenerateTrailingDeletion(t *testing.T) {
	msg, tier := Generate(score.Compare("the quick brown fox", "the quick brown"))
	if tier != model.Good {
		t.Fatalf("tier = %v, want good", tier)
	}
	want := "Good job! Just a few words to work on. 1 word was skipped."
	if msg != want {
		t.Fatalf("message = %q, want %q", msg, want)
	}
}

func TestGenerateClausesPluralized(t *testing.T) {
	res := model.ComparisonResult{
		Accuracy:      20,
		Substitutions: 2,
		Deletions:     1,
		Insertions:    3,
	}
	msg, tier := Generate(res)
	if tier != model.NeedsImprovement {
		t.Fatalf("tier = %v, want needs-improvement", tier)
	}
	want := "Keep practicing. Try speaking more slowly and clearly. " +
		"2 words were misrecognized. 1 word was skipped. 3 extra words were detected."
	if msg != want {
		t.Fatalf("message = %q, want %q", msg, want)
	}
}

func TestGenerateOmitsZeroCounts(t *testing.T) {
	msg, _ := Generate(model.ComparisonResult{Accuracy: 60, Insertions: 1})
	want := "Fair attempt. Keep practicing the highlighted words. 1 extra word was detected."
	if msg != want {
		t.Fatalf("message = %q, want %q", msg, want)
	}
}
