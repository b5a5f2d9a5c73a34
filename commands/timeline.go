package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-storyteller/internal/core/model"
	"github.com/penwyp/go-storyteller/internal/core/timeline"
	"github.com/penwyp/go-storyteller/internal/data/store"
	"github.com/penwyp/go-storyteller/internal/presentation/formatter"
	"github.com/penwyp/go-storyteller/internal/util"
)

var (
	fromFlag    string
	toFlag      string
	sourcesFlag []string

	timelineCmd = &cobra.Command{
		Use:   "timeline",
		Short: "Display the stored event timeline",
		RunE:  runTimeline,
	}
)

func init() {
	timelineCmd.Flags().StringVar(&fromFlag, "from", "",
		"Inclusive lower bound (e.g. 2025-01-01 or 2025-01-01T09:00)")
	timelineCmd.Flags().StringVar(&toFlag, "to", "",
		"Inclusive upper bound")
	timelineCmd.Flags().StringSliceVar(&sourcesFlag, "sources", nil,
		"Source types to include (copilot, calendar, email, github, notes)")
	rootCmd.AddCommand(timelineCmd)
}

func runTimeline(cmd *cobra.Command, args []string) error {
	filter, err := buildFilter()
	if err != nil {
		return err
	}

	events, err := store.NewStore(expandPath(cfg.StoreFile)).LoadAll()
	if err != nil {
		return err
	}

	result := timeline.Query(events, filter)
	fmt.Print(formatter.NewTimelineTable().Render(result))
	return nil
}

func buildFilter() (timeline.Filter, error) {
	filter := timeline.Filter{}

	if fromFlag != "" {
		t, err := util.ParseTimestamp(fromFlag)
		if err != nil {
			return filter, fmt.Errorf("invalid --from: %w", err)
		}
		filter.From = &t
	}
	if toFlag != "" {
		t, err := util.ParseTimestamp(toFlag)
		if err != nil {
			return filter, fmt.Errorf("invalid --to: %w", err)
		}
		// A bare date bound includes the whole day.
		if len(toFlag) == len("2006-01-02") {
			end := t.Add(24*time.Hour - time.Minute)
			filter.To = &end
		} else {
			filter.To = &t
		}
	}
	if len(sourcesFlag) > 0 {
		filter.Sources = make(map[model.SourceType]bool, len(sourcesFlag))
		for _, s := range sourcesFlag {
			st, err := model.ParseSourceType(s)
			if err != nil {
				return filter, err
			}
			filter.Sources[st] = true
		}
	}
	return filter, nil
}
