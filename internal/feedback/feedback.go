// Package feedback maps scored results to tiers and guidance text.
package feedback

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/tuispeak/internal/model"
)

// Tier boundaries on accuracy, inclusive lower bounds.
const (
	excellentMin = 90.0
	goodMin      = 70.0
	fairMin      = 50.0
)

// TierFor buckets an accuracy percentage.
func TierFor(accuracy float64) model.Tier {
	switch {
	case accuracy >= excellentMin:
		return model.Excellent
	case accuracy >= goodMin:
		return model.Good
	case accuracy >= fairMin:
		return model.Fair
	default:
		return model.NeedsImprovement
	}
}

// Generate returns the feedback message and tier for a result.
func Generate(result model.ComparisonResult) (string, model.Tier) {
	tier := TierFor(result.Accuracy)
	parts := []string{headline(tier)}
	if result.Substitutions > 0 {
		parts = append(parts, countClause(result.Substitutions, "word was misrecognized.", "words were misrecognized."))
	}
	if result.Deletions > 0 {
		parts = append(parts, countClause(result.Deletions, "word was skipped.", "words were skipped."))
	}
	if result.Insertions > 0 {
		parts = append(parts, countClause(result.Insertions, "extra word was detected.", "extra words were detected."))
	}
	return strings.Join(parts, " "), tier
}

func headline(tier model.Tier) string {
	switch tier {
	case model.Excellent:
		return "Excellent! Your speech closely matches the text."
	case model.Good:
		return "Good job! Just a few words to work on."
	case model.Fair:
		return "Fair attempt. Keep practicing the highlighted words."
	default:
		return "Keep practicing. Try speaking more slowly and clearly."
	}
}

func countClause(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %s", n, plural)
}
