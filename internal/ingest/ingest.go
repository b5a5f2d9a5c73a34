package ingest

import (
	"fmt"
	"runtime"
	"time"

	"github.com/penwyp/go-storyteller/internal/core/model"
	"github.com/penwyp/go-storyteller/internal/data/cache"
	"github.com/penwyp/go-storyteller/internal/data/parser"
	"github.com/penwyp/go-storyteller/internal/data/scanner"
	"github.com/penwyp/go-storyteller/internal/data/store"
	"github.com/penwyp/go-storyteller/internal/util"
)

// Config holds the ingestion pipeline settings.
type Config struct {
	StoreFile   string
	CacheDir    string
	SourceType  model.SourceType // empty = auto-detect
	Concurrency int
}

// ArtifactError reports one input that produced no events and why.
type ArtifactError struct {
	Path   string
	Source model.SourceType
	Err    error
}

func (e ArtifactError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s (%s): %v", e.Path, e.Source, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Report summarizes one batch ingestion: what was parsed, what was
// merged, what was skipped as duplicate, and which artifacts failed.
// One failing artifact never suppresses the rest of the batch.
type Report struct {
	ArtifactCount int
	EventCount    int
	Inserted      int
	Duplicates    int
	Failures      []ArtifactError
}

// Ingester runs the scan → parse → normalize → merge pipeline.
type Ingester struct {
	config  *Config
	scanner *scanner.Scanner
	parser  *parser.Parser
	cache   *cache.Cache
	store   *store.Store
}

// New creates an Ingester for the given configuration.
func New(config *Config) (*Ingester, error) {
	if config.Concurrency == 0 {
		config.Concurrency = runtime.NumCPU()
	}

	sc := scanner.NewScanner()
	if config.SourceType != "" {
		sc = scanner.NewScannerWithOverride(config.SourceType)
	}

	var parseCache *cache.Cache
	if config.CacheDir != "" {
		pc, err := cache.NewCache(config.CacheDir)
		if err != nil {
			util.LogWarn(fmt.Sprintf("Parse cache unavailable: %v", err))
		} else {
			parseCache = pc
		}
	}

	return &Ingester{
		config:  config,
		scanner: sc,
		parser:  parser.NewParser(config.Concurrency),
		cache:   parseCache,
		store:   store.NewStore(config.StoreFile),
	}, nil
}

// Store exposes the underlying event store for follow-up queries.
func (i *Ingester) Store() *store.Store {
	return i.store
}

// Run ingests every artifact under path and merges the results into
// the persisted collection.
func (i *Ingester) Run(path string) (*Report, error) {
	start := time.Now()
	util.LogInfo(fmt.Sprintf("Starting ingestion of %s", path))

	// Phase 1: resolve artifacts.
	scanStart := time.Now()
	scanResult, err := i.scanner.Scan(path)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	util.LogDebug(fmt.Sprintf("Phase 1 - Scan duration: %v, %d artifacts", time.Since(scanStart), len(scanResult.Artifacts)))

	report := &Report{ArtifactCount: len(scanResult.Artifacts)}
	for _, unresolved := range scanResult.Unresolved {
		report.Failures = append(report.Failures, ArtifactError{Path: path, Err: unresolved})
	}

	// Phase 2: parse, serving unchanged artifacts from cache.
	parseStart := time.Now()
	events := i.parseAll(scanResult.Artifacts, report)
	report.EventCount = len(events)
	util.LogDebug(fmt.Sprintf("Phase 2 - Parse duration: %v, %d events", time.Since(parseStart), len(events)))

	// Phase 3: merge into the persisted collection.
	mergeStart := time.Now()
	mergeResult, err := i.store.Merge(events)
	if err != nil {
		return nil, fmt.Errorf("merge into %s: %w", i.config.StoreFile, err)
	}
	report.Inserted = mergeResult.Inserted
	report.Duplicates = mergeResult.Duplicates
	util.LogDebug(fmt.Sprintf("Phase 3 - Merge duration: %v", time.Since(mergeStart)))

	util.LogInfo(fmt.Sprintf("Ingestion completed in %v: %d inserted, %d duplicates, %d failures",
		time.Since(start), report.Inserted, report.Duplicates, len(report.Failures)))
	return report, nil
}

func (i *Ingester) parseAll(artifacts []scanner.Artifact, report *Report) []model.Event {
	var events []model.Event
	var toParse []scanner.Artifact

	for _, artifact := range artifacts {
		// Repositories grow with every commit; caching them by file
		// identity is meaningless.
		if i.cache != nil && artifact.SourceType != model.SourceGithub {
			if cached, ok := i.cache.Get(artifact.Path); ok {
				events = append(events, cached...)
				continue
			}
		}
		toParse = append(toParse, artifact)
	}

	if len(toParse) == 0 {
		return events
	}

	for result := range i.parser.ParseArtifacts(toParse) {
		if result.Error != nil {
			report.Failures = append(report.Failures, ArtifactError{
				Path:   result.Artifact.Path,
				Source: result.Artifact.SourceType,
				Err:    result.Error,
			})
			continue
		}
		events = append(events, result.Events...)

		if i.cache != nil && result.Artifact.SourceType != model.SourceGithub {
			if err := i.cache.Set(result.Artifact.Path, result.Events); err != nil {
				util.LogDebug(fmt.Sprintf("Cache write failed for %s: %v", result.Artifact.Path, err))
			}
		}
	}
	return events
}
