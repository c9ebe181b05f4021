// Package score turns alignments into scored comparison results.
package score

import (
	"github.com/verte-zerg/tuispeak/internal/align"
	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/tokenize"
)

// Score derives counts, word error rate and accuracy from diagnostics.
// An empty reference yields a word error rate of zero whatever the distance.
func Score(reference []string, diagnostics []model.WordDiagnostic, distance int) model.ComparisonResult {
	res := model.ComparisonResult{
		Diagnostics:         diagnostics,
		TotalReferenceWords: len(reference),
		Distance:            distance,
	}
	for _, d := range diagnostics {
		switch d.Status {
		case model.Correct:
			res.Correct++
		case model.Substitution:
			res.Substitutions++
		case model.Deletion:
			res.Deletions++
		case model.Insertion:
			res.Insertions++
		}
	}
	if len(reference) > 0 {
		res.WordErrorRate = float64(distance) / float64(len(reference))
	}
	res.Accuracy = Accuracy(res.WordErrorRate)
	return res
}

// Accuracy converts a word error rate to a percentage clamped to [0, 100].
func Accuracy(wordErrorRate float64) float64 {
	acc := (1 - wordErrorRate) * 100
	if acc < 0 {
		return 0
	}
	if acc > 100 {
		return 100
	}
	return acc
}

// Compare tokenizes both texts, aligns them and scores the alignment.
func Compare(reference, recognized string) model.ComparisonResult {
	refTokens := tokenize.Tokenize(reference)
	recTokens := tokenize.Tokenize(recognized)
	a := align.Align(refTokens, recTokens)
	res := Score(refTokens, a.Backtrace(), a.Distance)
	res.ReferenceText = reference
	res.RecognizedText = recognized
	return res
}
