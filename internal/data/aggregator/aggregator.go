package aggregator

import (
	"fmt"
	"sort"
	"time"

	"github.com/penwyp/go-storyteller/internal/core/model"
	"github.com/penwyp/go-storyteller/internal/core/timeline"
	"github.com/penwyp/go-storyteller/internal/util"
)

// Aggregator buckets a timeline snapshot into reporting periods and
// produces the structured context the external narrative step
// consumes. It never writes prose.
type Aggregator struct {
	topicCount int
}

// NewAggregator creates an Aggregator ranking the given number of
// topics per context.
func NewAggregator(topicCount int) *Aggregator {
	if topicCount <= 0 {
		topicCount = 15
	}
	return &Aggregator{topicCount: topicCount}
}

// Aggregate computes the half-open window of the period containing
// anchor (day = [00:00, next 00:00), week = [Monday 00:00, next Monday
// 00:00)), scopes the snapshot to it, and builds the period context.
func (a *Aggregator) Aggregate(events []model.Event, period model.Period, anchor time.Time) (*model.PeriodContext, error) {
	var start, end time.Time
	var dateRange string

	switch period {
	case model.PeriodDay:
		start, end = util.DayWindow(anchor)
		dateRange = start.Format("2006-01-02")
	case model.PeriodWeek:
		start, end = util.WeekWindow(anchor)
		dateRange = fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	default:
		return nil, &model.InvalidPeriodError{Value: string(period)}
	}

	scoped := timeline.Window(events, start, end)
	util.LogDebug(fmt.Sprintf("Aggregating %s %s: %d of %d events in window", period, dateRange, len(scoped), len(events)))

	ctx := &model.PeriodContext{
		Period:      period,
		WindowStart: model.NewTimestamp(start),
		WindowEnd:   model.NewTimestamp(end),
		DateRange:   dateRange,
		TotalEvents: len(scoped),
		SourceCount: make(map[model.SourceType]int),
		BySource:    make(map[model.SourceType][]model.Event),
		Topics:      a.rankTopics(scoped),
	}

	for _, ev := range scoped {
		ctx.SourceCount[ev.SourceType]++
		ctx.BySource[ev.SourceType] = append(ctx.BySource[ev.SourceType], ev)
	}

	ctx.Repos = groupByRepo(ctx.BySource[model.SourceGithub])
	return ctx, nil
}

// groupByRepo builds the secondary grouping of github events by their
// repository identifier, repositories in name order and commits in
// timeline order.
func groupByRepo(commits []model.Event) []model.RepoActivity {
	byRepo := make(map[string][]model.Event)
	for _, ev := range commits {
		repo := ev.Metadata["repo"]
		if repo == "" {
			repo = "unknown"
		}
		byRepo[repo] = append(byRepo[repo], ev)
	}

	names := make([]string, 0, len(byRepo))
	for name := range byRepo {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]model.RepoActivity, 0, len(names))
	for _, name := range names {
		out = append(out, model.RepoActivity{Repo: name, Commits: byRepo[name]})
	}
	return out
}
