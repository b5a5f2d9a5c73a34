package commands

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-storyteller/internal/config"
	"github.com/penwyp/go-storyteller/internal/util"
)

var (
	debug      bool
	configFile string

	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "go-storyteller",
		Short: "Build work-activity timelines from scattered data sources",
		Long: `go-storyteller normalizes heterogeneous records of work activity
(assistant session logs, calendar exports, emails, git commit history,
freeform notes) into a single chronological event collection, and
prepares structured period contexts for narrative generation.

Examples:
  go-storyteller ingest ./data                       # Ingest everything under ./data
  go-storyteller ingest notes.md --source-type notes # Ingest one file with explicit kind
  go-storyteller timeline --from 2025-01-01          # Show the stored timeline
  go-storyteller prepare --period week               # Prepare a weekly context document
  go-storyteller watch ./data                        # Re-ingest as files change`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(expandPath(configFile))
			if err != nil {
				return err
			}
			cfg = loaded

			logLevel := cfg.LogLevel
			if debug {
				logLevel = "debug"
			}
			logFile := expandPath(cfg.LogFile)
			if err := ensureDir(filepath.Dir(logFile)); err != nil {
				logFile = ""
			}
			util.InitLogger(logLevel, logFile, debug)
			return nil
		},
	}
)

const defaultConfigFile = "~/.go-storyteller/config.yaml"

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", defaultConfigFile,
		"Configuration file path")
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
