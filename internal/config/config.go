package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime settings of the storyteller pipeline.
// Values come from, in increasing precedence: built-in defaults, the
// YAML config file, and STORYTELLER_* environment variables (a .env
// file in the working directory is loaded first when present).
type Config struct {
	DataDir   string `yaml:"data_dir"`   // scanned when ingest gets no explicit path
	OutputDir string `yaml:"output_dir"` // generated context documents
	StoreFile string `yaml:"store_file"` // persisted event collection
	CacheDir  string `yaml:"cache_dir"`  // per-artifact parse cache
	LogFile   string `yaml:"log_file"`
	LogLevel  string `yaml:"log_level"`

	TopicCount  int `yaml:"topic_count"` // ranked topics per period context
	Concurrency int `yaml:"concurrency"` // parallel artifact parses, 0 = NumCPU
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".go-storyteller")
	return &Config{
		DataDir:    "data",
		OutputDir:  "output",
		StoreFile:  filepath.Join("output", "ingested.json"),
		CacheDir:   filepath.Join(base, "cache"),
		LogFile:    filepath.Join(base, "logs", "app.log"),
		LogLevel:   "info",
		TopicCount: 15,
	}
}

// Load builds the configuration from defaults, the YAML file at path
// (missing file is fine, unreadable YAML is an error), and environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	// .env in the working directory, ignored when absent.
	_ = godotenv.Load()
	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) applyEnv() {
	set := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv("STORYTELLER_" + key)); v != "" {
			*dst = v
		}
	}
	set("DATA_DIR", &c.DataDir)
	set("OUTPUT_DIR", &c.OutputDir)
	set("STORE_FILE", &c.StoreFile)
	set("CACHE_DIR", &c.CacheDir)
	set("LOG_FILE", &c.LogFile)
	set("LOG_LEVEL", &c.LogLevel)
}
