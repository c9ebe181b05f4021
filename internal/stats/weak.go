package stats

import (
	"sort"

	"github.com/verte-zerg/tuispeak/internal/model"
)

// SortWeakest orders aggregates by ascending accuracy, then by word.
func SortWeakest(aggs []model.WordAggregate) []model.WordAggregate {
	out := make([]model.WordAggregate, len(aggs))
	copy(out, aggs)
	sort.Slice(out, func(i, j int) bool {
		ai, aj := WordAccuracy(out[i]), WordAccuracy(out[j])
		if ai == aj {
			return out[i].Word < out[j].Word
		}
		return ai < aj
	})
	return out
}

// SelectWeakWords selects the lowest-accuracy words that were missed at
// least once.
func SelectWeakWords(aggs []model.WordAggregate, top int) map[string]struct{} {
	weak := map[string]struct{}{}
	candidates := SortWeakest(aggs)
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for _, agg := range candidates[:top] {
		if agg.Correct == agg.Attempts {
			break
		}
		weak[agg.Word] = struct{}{}
	}
	return weak
}

// RecentWeakWords selects weak words from the most recent window records of
// the given mode. An empty mode matches every record.
func RecentWeakWords(records []model.SessionRecord, mode string, window, top int) map[string]struct{} {
	if window <= 0 {
		return map[string]struct{}{}
	}
	recent := Filter(records, model.StatsConfig{Mode: mode, Last: window})
	return SelectWeakWords(WordAggregates(recent), top)
}
