package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-storyteller/internal/core/model"
	"github.com/penwyp/go-storyteller/internal/data/cache"
	"github.com/penwyp/go-storyteller/internal/ingest"
)

var (
	sourceTypeFlag string
	resetCache     bool

	ingestCmd = &cobra.Command{
		Use:   "ingest [path]",
		Short: "Parse raw artifacts into the persisted event collection",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runIngest,
	}
)

func init() {
	ingestCmd.Flags().StringVar(&sourceTypeFlag, "source-type", "auto",
		"Source type to parse as (auto, copilot, calendar, email, github, notes)")
	ingestCmd.Flags().BoolVar(&resetCache, "reset-cache", false,
		"Clear the parse cache before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := cfg.DataDir
	if len(args) > 0 {
		path = args[0]
	}
	path = expandPath(path)

	ingestConfig := &ingest.Config{
		StoreFile:   expandPath(cfg.StoreFile),
		CacheDir:    expandPath(cfg.CacheDir),
		Concurrency: cfg.Concurrency,
	}
	if sourceTypeFlag != "" && sourceTypeFlag != "auto" {
		st, err := model.ParseSourceType(sourceTypeFlag)
		if err != nil {
			return err
		}
		ingestConfig.SourceType = st
	}

	ingester, err := ingest.New(ingestConfig)
	if err != nil {
		return err
	}

	if resetCache {
		if err := clearParseCache(ingestConfig.CacheDir); err != nil {
			return fmt.Errorf("failed to clear parse cache: %w", err)
		}
	}

	report, err := ingester.Run(path)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d artifacts: %d events inserted, %d duplicates skipped -> %s\n",
		report.ArtifactCount, report.Inserted, report.Duplicates, ingestConfig.StoreFile)
	for _, failure := range report.Failures {
		fmt.Printf("  warning: %v\n", failure)
	}
	return nil
}

func clearParseCache(cacheDir string) error {
	c, err := cache.NewCache(cacheDir)
	if err != nil {
		return err
	}
	return c.Clear()
}
