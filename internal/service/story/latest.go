package story

import (
	"time"

	storymodel "github.com/zhouzirui/z-fairytale/backend/internal/model/story"
	"github.com/zhouzirui/z-fairytale/backend/internal/model/table"
)

// LatestKind tells the view which rendering applies.
type LatestKind string

const (
	LatestEmpty LatestKind = "empty"
	LatestStory LatestKind = "story"
	LatestRaw   LatestKind = "raw"
)

// Latest is the outcome of a fetch.
type Latest struct {
	Kind    LatestKind            `json:"kind"`
	Story   *storymodel.Generated `json:"story,omitempty"`
	Columns []string              `json:"columns,omitempty"`
	Table   *table.Table          `json:"table,omitempty"`
}

func resolveLatest(t *table.Table, byTimestamp bool) Latest {
	if t.Empty() {
		return Latest{Kind: LatestEmpty}
	}

	row := t.Len() - 1
	if byTimestamp {
		row = newestRow(t, row)
	}

	generated, ok := storymodel.GeneratedFromRow(t, row)
	if !ok {
		return Latest{
			Kind:    LatestRaw,
			Columns: append([]string(nil), t.Columns...),
			Table:   t,
		}
	}
	return Latest{Kind: LatestStory, Story: &generated}
}

// newestRow picks the row with the greatest parseable timestamp. Ties go to the later row.
func newestRow(t *table.Table, fallback int) int {
	if !t.Has(storymodel.ColumnTimestamp) {
		return fallback
	}
	best := -1
	var bestTime time.Time
	for i := 0; i < t.Len(); i++ {
		raw, _ := t.Value(i, storymodel.ColumnTimestamp)
		ts, err := time.Parse(storymodel.TimestampLayout, raw)
		if err != nil {
			continue
		}
		if best < 0 || !ts.Before(bestTime) {
			best, bestTime = i, ts
		}
	}
	if best < 0 {
		return fallback
	}
	return best
}
