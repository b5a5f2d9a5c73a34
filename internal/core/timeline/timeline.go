package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/penwyp/go-storyteller/internal/core/model"
)

// Filter scopes a query. Nil bounds are unbounded; present bounds are
// inclusive. An empty source set means every source.
type Filter struct {
	From    *time.Time
	To      *time.Time
	Sources map[model.SourceType]bool
}

// Query filters a snapshot of events by time window and source set and
// returns them in the canonical order: timestamp ascending, ties
// broken by source type then title. The input slice is never mutated.
func Query(events []model.Event, filter Filter) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if filter.From != nil && ev.Timestamp.Time.Before(*filter.From) {
			continue
		}
		if filter.To != nil && ev.Timestamp.Time.After(*filter.To) {
			continue
		}
		if len(filter.Sources) > 0 && !filter.Sources[ev.SourceType] {
			continue
		}
		out = append(out, ev)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Less(out[j])
	})
	return out
}

// Window returns the events inside the half-open interval [from, to),
// ordered canonically. Period aggregation uses half-open windows so
// adjacent periods never share an event.
func Window(events []model.Event, from, to time.Time) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		t := ev.Timestamp.Time
		if t.Before(from) || !t.Before(to) {
			continue
		}
		out = append(out, ev)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Less(out[j])
	})
	return out
}

// GroupByDay buckets events under their YYYY-MM-DD day key.
func GroupByDay(events []model.Event) map[string][]model.Event {
	groups := make(map[string][]model.Event)
	for _, ev := range events {
		key := ev.Timestamp.Format("2006-01-02")
		groups[key] = append(groups[key], ev)
	}
	return groups
}

// GroupByWeek buckets events under their ISO week key (2025-W03).
func GroupByWeek(events []model.Event) map[string][]model.Event {
	groups := make(map[string][]model.Event)
	for _, ev := range events {
		year, week := ev.Timestamp.ISOWeek()
		key := fmt.Sprintf("%d-W%02d", year, week)
		groups[key] = append(groups[key], ev)
	}
	return groups
}

// SortedKeys returns the group keys in ascending order.
func SortedKeys(groups map[string][]model.Event) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
