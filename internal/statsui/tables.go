package statsui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"

	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/stats"
)

var historyWidths = []int{16, 9, 6, 6, 6, 9, 17}

func newGrid(cols []table.Column) table.Model {
	t := table.New(table.WithColumns(cols), table.WithHeight(1))
	t.SetStyles(gridStyles())
	return t
}

func missedWordColumns() []table.Column {
	return []table.Column{
		{Title: "Word", Width: 16},
		{Title: "Accuracy", Width: 9},
		{Title: "Attempts", Width: 8},
		{Title: "Misrecognized", Width: 13},
		{Title: "Skipped", Width: 7},
	}
}

// missedWordRows lists words weakest first.
func missedWordRows(aggs []model.WordAggregate) []table.Row {
	sorted := stats.SortWeakest(aggs)
	rows := make([]table.Row, len(sorted))
	for i, agg := range sorted {
		rows[i] = table.Row{
			agg.Word,
			fmt.Sprintf("%.2f%%", stats.WordAccuracy(agg)*100),
			strconv.Itoa(agg.Attempts),
			strconv.Itoa(agg.Substituted),
			strconv.Itoa(agg.Deleted),
		}
	}
	return rows
}

func historyColumns() []table.Column {
	cols := make([]table.Column, len(stats.HistoryHeaders))
	for i, title := range stats.HistoryHeaders {
		cols[i] = table.Column{Title: title, Width: historyWidths[i]}
	}
	return cols
}

// historyRows lists sessions newest first.
func historyRows(sessions []model.SessionAggregate) []table.Row {
	rows := make([]table.Row, len(sessions))
	for i, s := range sessions {
		rows[len(sessions)-1-i] = stats.HistoryRow(s)
	}
	return rows
}
