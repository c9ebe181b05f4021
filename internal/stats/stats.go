// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/verte-zerg/tuispeak/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics returns accuracy, word error rate and recognized words per
// minute for a record. Words per minute is zero when no duration was stored.
func SessionMetrics(rec model.SessionRecord) (accuracy, wer, wpm float64) {
	accuracy = rec.Result.Accuracy
	wer = rec.Result.WordErrorRate
	if rec.Duration == nil || *rec.Duration <= 0 {
		return accuracy, wer, 0
	}
	recognized := 0
	for _, d := range rec.Result.Diagnostics {
		if d.HasRecognized() {
			recognized++
		}
	}
	wpm = float64(recognized) / (*rec.Duration / 60.0)
	return accuracy, wer, wpm
}

// Aggregate filters records by cfg and summarizes them oldest first.
func Aggregate(records []model.SessionRecord, cfg model.StatsConfig) []model.SessionAggregate {
	filtered := Filter(records, cfg)
	out := make([]model.SessionAggregate, 0, len(filtered))
	for _, rec := range filtered {
		agg := model.SessionAggregate{
			ID:             rec.ID,
			CreatedAt:      rec.CreatedAt,
			Mode:           rec.Mode,
			Accuracy:       rec.Result.Accuracy,
			WordErrorRate:  rec.Result.WordErrorRate,
			ReferenceWords: rec.Result.TotalReferenceWords,
			Errors:         rec.Result.ErrorCount(),
			Tier:           rec.Tier,
		}
		if rec.Duration != nil {
			agg.DurationSec = *rec.Duration
		}
		out = append(out, agg)
	}
	return out
}

// Filter applies the mode, since and last filters and orders records by
// creation time. Records with equal timestamps keep their stored order.
func Filter(records []model.SessionRecord, cfg model.StatsConfig) []model.SessionRecord {
	out := make([]model.SessionRecord, 0, len(records))
	for _, rec := range records {
		if cfg.Mode != "" && rec.Mode.String() != cfg.Mode {
			continue
		}
		if cfg.Since != nil && rec.CreatedAt.Before(*cfg.Since) {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if cfg.Last > 0 && len(out) > cfg.Last {
		out = out[len(out)-cfg.Last:]
	}
	return out
}

// WordAggregates tallies how every reference word fared across records.
// The result is ordered by word.
func WordAggregates(records []model.SessionRecord) []model.WordAggregate {
	byWord := map[string]*model.WordAggregate{}
	for _, rec := range records {
		tallyWords(byWord, rec)
	}
	return sortedAggregates(byWord)
}

// WordAggregatesBySession tallies reference words per record id.
func WordAggregatesBySession(records []model.SessionRecord) map[string]map[string]model.WordAggregate {
	out := make(map[string]map[string]model.WordAggregate, len(records))
	for _, rec := range records {
		byWord := map[string]*model.WordAggregate{}
		tallyWords(byWord, rec)
		words := make(map[string]model.WordAggregate, len(byWord))
		for w, agg := range byWord {
			words[w] = *agg
		}
		out[rec.ID] = words
	}
	return out
}

func tallyWords(byWord map[string]*model.WordAggregate, rec model.SessionRecord) {
	for _, d := range rec.Result.Diagnostics {
		if !d.HasReference() {
			continue
		}
		agg, ok := byWord[d.ReferenceWord]
		if !ok {
			agg = &model.WordAggregate{Word: d.ReferenceWord}
			byWord[d.ReferenceWord] = agg
		}
		agg.Attempts++
		switch d.Status {
		case model.Correct:
			agg.Correct++
		case model.Substitution:
			agg.Substituted++
		case model.Deletion:
			agg.Deleted++
		}
	}
}

func sortedAggregates(byWord map[string]*model.WordAggregate) []model.WordAggregate {
	out := make([]model.WordAggregate, 0, len(byWord))
	for _, agg := range byWord {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out
}

// WordAccuracy returns the share of attempts spoken correctly, 1 when the
// word was never attempted.
func WordAccuracy(agg model.WordAggregate) float64 {
	if agg.Attempts == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(agg.Attempts)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkChars[max(0, min(idx, last))])
	}
	return b.String()
}

// RenderSummary prints a summary of sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalAcc, totalWER float64
	best := 0.0
	words := 0
	tiers := map[model.Tier]int{}
	for _, s := range sessions {
		totalAcc += s.Accuracy
		totalWER += s.WordErrorRate
		best = math.Max(best, s.Accuracy)
		words += s.ReferenceWords
		tiers[s.Tier]++
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Words practiced: %d", words),
		fmt.Sprintf("Avg Accuracy: %.2f%%", totalAcc/count),
		fmt.Sprintf("Best Accuracy: %.2f%%", best),
		fmt.Sprintf("Avg WER: %.3f", totalWER/count),
		fmt.Sprintf("Tiers: %s %d · %s %d · %s %d · %s %d",
			model.Excellent.Label(), tiers[model.Excellent],
			model.Good.Label(), tiers[model.Good],
			model.Fair.Label(), tiers[model.Fair],
			model.NeedsImprovement.Label(), tiers[model.NeedsImprovement]),
		"",
	}
	return writeLines(w, lines)
}

// RenderCurves prints learning curves for accuracy and word error rate.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	return RenderCurvesWithSize(w, sessions, window, 0, defaultPlotHeight, false)
}

// RenderCurvesWithSize prints learning curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	accs := make([]float64, len(sessions))
	wers := make([]float64, len(sessions))
	for i, s := range sessions {
		accs[i] = s.Accuracy
		wers[i] = s.WordErrorRate * 100
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Learning Curves", []Series{
		{Name: "Accuracy", Values: MovingAverage(accs, window)},
		{Name: "WER %", Values: MovingAverage(wers, window)},
	}, width, height, useColor)
}

// RenderWordTable prints per-word aggregates, weakest first.
func RenderWordTable(w io.Writer, aggs []model.WordAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No word stats found.")
		return err
	}
	tbl := textTable{
		headers: []string{"Word", "Accuracy", "Attempts", "Misrecognized", "Skipped"},
		numeric: map[int]bool{1: true, 2: true, 3: true, 4: true},
	}
	for _, agg := range SortWeakest(aggs) {
		tbl.add(
			agg.Word,
			fmt.Sprintf("%.2f%%", WordAccuracy(agg)*100),
			strconv.Itoa(agg.Attempts),
			strconv.Itoa(agg.Substituted),
			strconv.Itoa(agg.Deleted),
		)
	}
	lines := append([]string{"Per-Word (Windowed)"}, tbl.lines()...)
	lines = append(lines, "")
	return writeLines(w, lines)
}

// RenderHistory prints one line per session.
func RenderHistory(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	tbl := textTable{headers: HistoryHeaders, numeric: map[int]bool{2: true, 3: true, 4: true, 5: true}}
	for _, s := range sessions {
		tbl.add(HistoryRow(s)...)
	}
	return writeLines(w, tbl.lines())
}

// HistoryHeaders are the column titles used for session history tables.
var HistoryHeaders = []string{"Date", "Mode", "Words", "Errors", "WER", "Accuracy", "Tier"}

// HistoryRow formats a session for history tables.
func HistoryRow(s model.SessionAggregate) []string {
	return []string{
		s.CreatedAt.Local().Format("2006-01-02 15:04"),
		s.Mode.String(),
		fmt.Sprintf("%d", s.ReferenceWords),
		fmt.Sprintf("%d", s.Errors),
		fmt.Sprintf("%.3f", s.WordErrorRate),
		fmt.Sprintf("%.1f%%", s.Accuracy),
		s.Tier.Label(),
	}
}

// RenderWordCurves prints per-word accuracy curves.
func RenderWordCurves(w io.Writer, sessions []model.SessionAggregate, perSession map[string]map[string]model.WordAggregate, words []string, window int) error {
	return RenderWordCurvesWithSize(w, sessions, perSession, words, window, 0, defaultPlotHeight, false)
}

// RenderWordCurvesWithSize prints per-word accuracy curves sized to a given
// total width. Sessions where the word did not occur carry the previous value.
func RenderWordCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, perSession map[string]map[string]model.WordAggregate, words []string, window, totalWidth, height int, useColor bool) error {
	if len(words) == 0 || len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Per-Word Curves"); err != nil {
		return err
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	for _, word := range words {
		series := make([]float64, 0, len(sessions))
		last := math.NaN()
		for _, s := range sessions {
			if agg, ok := perSession[s.ID][word]; ok {
				last = WordAccuracy(agg) * 100
			}
			if !math.IsNaN(last) {
				series = append(series, last)
			}
		}
		if err := PlotSeriesWithColor(w, fmt.Sprintf("Word %q", word), []Series{
			{Name: "Accuracy", Values: MovingAverage(series, window)},
		}, width, height, useColor); err != nil {
			return err
		}
	}
	return nil
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
