package stats

import (
	"sort"
	"strings"

	"github.com/verte-zerg/tuispeak/internal/model"
)

// TopWordsByFrequency returns the n most attempted words.
func TopWordsByFrequency(aggs []model.WordAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]model.WordAggregate, len(aggs))
	copy(items, aggs)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Attempts == items[j].Attempts {
			return items[i].Word < items[j].Word
		}
		return items[i].Attempts > items[j].Attempts
	})
	n = min(n, len(items))
	out := make([]string, 0, n)
	for _, item := range items[:n] {
		out = append(out, item.Word)
	}
	return out
}

// ParseWords splits a comma-separated word selection, lowercasing each word
// and dropping empty entries.
func ParseWords(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
