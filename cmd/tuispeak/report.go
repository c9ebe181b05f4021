package main

import (
	"fmt"
	"io"

	"github.com/verte-zerg/tuispeak/internal/model"
)

// writeReport prints a comparison as plain text, one diagnostic per line.
func writeReport(w io.Writer, result model.ComparisonResult, message string, tier model.Tier) error {
	lines := []string{
		fmt.Sprintf("Reference:  %s", result.ReferenceText),
		fmt.Sprintf("Recognized: %s", result.RecognizedText),
		fmt.Sprintf("Accuracy:   %.1f%%  WER: %.3f  Tier: %s", result.Accuracy, result.WordErrorRate, tier.Label()),
		fmt.Sprintf("Words:      %d correct, %d misrecognized, %d skipped, %d extra",
			result.Correct, result.Substitutions, result.Deletions, result.Insertions),
		message,
	}
	if result.ErrorCount() > 0 {
		lines = append(lines, "", "Diagnostics:")
		for _, d := range result.Diagnostics {
			switch d.Status {
			case model.Substitution:
				lines = append(lines, fmt.Sprintf("  ~ %-3d %s -> %s", d.Position, d.ReferenceWord, d.RecognizedWord))
			case model.Deletion:
				lines = append(lines, fmt.Sprintf("  - %-3d %s", d.Position, d.ReferenceWord))
			case model.Insertion:
				lines = append(lines, fmt.Sprintf("  + %-3d %s", d.Position, d.RecognizedWord))
			}
		}
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
