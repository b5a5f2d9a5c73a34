package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-storyteller/internal/core/model"
	"github.com/penwyp/go-storyteller/internal/data/aggregator"
	"github.com/penwyp/go-storyteller/internal/data/store"
	"github.com/penwyp/go-storyteller/internal/presentation/formatter"
	"github.com/penwyp/go-storyteller/internal/util"
)

var (
	periodFlag string
	dateFlag   string
	outputFlag string

	prepareCmd = &cobra.Command{
		Use:   "prepare",
		Short: "Prepare a period context document for the narrative agent",
		RunE:  runPrepare,
	}
)

func init() {
	prepareCmd.Flags().StringVar(&periodFlag, "period", "day",
		"Period to aggregate (day, week)")
	prepareCmd.Flags().StringVar(&dateFlag, "date", "",
		"Anchor date (default: today)")
	prepareCmd.Flags().StringVarP(&outputFlag, "output", "o", "markdown",
		"Output format (markdown, json)")
	rootCmd.AddCommand(prepareCmd)
}

func runPrepare(cmd *cobra.Command, args []string) error {
	period, err := model.ParsePeriod(periodFlag)
	if err != nil {
		return err
	}

	anchor := time.Now()
	if dateFlag != "" {
		t, err := util.ParseTimestamp(dateFlag)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		anchor = t
	}

	events, err := store.NewStore(expandPath(cfg.StoreFile)).LoadAll()
	if err != nil {
		return err
	}

	ctx, err := aggregator.NewAggregator(cfg.TopicCount).Aggregate(events, period, anchor)
	if err != nil {
		return err
	}

	content, err := formatter.NewContextFormatter(outputFlag).Format(ctx)
	if err != nil {
		return err
	}

	outDir := expandPath(cfg.OutputDir)
	if err := ensureDir(outDir); err != nil {
		return err
	}
	ext := ".md"
	if outputFlag == "json" {
		ext = ".json"
	}
	anchorDay := strings.Split(ctx.DateRange, " ")[0]
	outFile := filepath.Join(outDir, fmt.Sprintf("context-%s-%s%s", period, anchorDay, ext))
	if err := os.WriteFile(outFile, []byte(content), 0644); err != nil {
		return err
	}

	fmt.Printf("Prepared %s context -> %s\n", period, outFile)
	fmt.Printf("  %d events across %d sources\n", ctx.TotalEvents, len(ctx.SourceCount))
	return nil
}
