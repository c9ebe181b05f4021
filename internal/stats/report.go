package stats

import (
	"context"

	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions         []model.SessionAggregate
	WindowSessionIDs []string
	WordAggsAll      []model.WordAggregate
	WordAggsWindow   []model.WordAggregate
	WordsPerSession  map[string]map[string]model.WordAggregate
}

// BuildReport loads every record from st and prepares it for rendering.
func BuildReport(ctx context.Context, st store.Store, cfg model.StatsConfig) (Report, error) {
	records, err := st.LoadAll(ctx)
	if err != nil {
		return Report{}, err
	}
	return NewReport(records, cfg), nil
}

// NewReport prepares records for rendering.
func NewReport(records []model.SessionRecord, cfg model.StatsConfig) Report {
	filtered := Filter(records, cfg)
	window := filtered
	if cfg.CurveWindow > 0 && len(window) > cfg.CurveWindow {
		window = window[len(window)-cfg.CurveWindow:]
	}
	windowIDs := make([]string, len(window))
	for i, rec := range window {
		windowIDs[i] = rec.ID
	}
	return Report{
		Sessions:         Aggregate(filtered, model.StatsConfig{}),
		WindowSessionIDs: windowIDs,
		WordAggsAll:      WordAggregates(filtered),
		WordAggsWindow:   WordAggregates(window),
		WordsPerSession:  WordAggregatesBySession(filtered),
	}
}
