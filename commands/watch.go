package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/penwyp/go-storyteller/internal/data/scanner"
	"github.com/penwyp/go-storyteller/internal/ingest"
	"github.com/penwyp/go-storyteller/internal/util"
)

// watchDebounce batches rapid write bursts (editors, sync clients)
// into one ingestion pass.
const watchDebounce = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a data directory and re-ingest artifacts as they change",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := cfg.DataDir
	if len(args) > 0 {
		path = args[0]
	}
	path = expandPath(path)

	ingester, err := ingest.New(&ingest.Config{
		StoreFile:   expandPath(cfg.StoreFile),
		CacheDir:    expandPath(cfg.CacheDir),
		Concurrency: cfg.Concurrency,
	})
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addWatchPaths(watcher, path); err != nil {
		return err
	}

	// Initial pass so the store reflects the directory as found.
	if report, err := ingester.Run(path); err != nil {
		return err
	} else {
		fmt.Printf("Initial ingestion: %d inserted, %d duplicates\n", report.Inserted, report.Duplicates)
	}

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", path)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var timer *time.Timer
	timerCh := make(chan struct{}, 1)
	dirty := false

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			// New directories need their own watches.
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if err := addWatchPaths(watcher, event.Name); err != nil {
					util.LogWarn(fmt.Sprintf("Failed to watch %s: %v", event.Name, err))
				}
			} else if _, err := scanner.DetectSourceType(event.Name); err != nil {
				continue
			}

			dirty = true
			if timer == nil {
				timer = time.AfterFunc(watchDebounce, func() { timerCh <- struct{}{} })
			} else {
				timer.Reset(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			util.LogError("File monitoring error: " + err.Error())

		case <-timerCh:
			if !dirty {
				continue
			}
			dirty = false
			report, err := ingester.Run(path)
			if err != nil {
				util.LogError(fmt.Sprintf("Re-ingestion failed: %v", err))
				continue
			}
			if report.Inserted > 0 || len(report.Failures) > 0 {
				fmt.Printf("Re-ingested: %d inserted, %d duplicates, %d failures\n",
					report.Inserted, report.Duplicates, len(report.Failures))
			}

		case <-sigCh:
			fmt.Println("\nStopping watch")
			return nil
		}
	}
}

// addWatchPaths recursively registers path and its subdirectories.
func addWatchPaths(watcher *fsnotify.Watcher, path string) error {
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			// Repository internals churn constantly without being
			// source artifacts themselves.
			if filepath.Base(p) == ".git" {
				return filepath.SkipDir
			}
			return watcher.Add(p)
		}
		return nil
	})
}
