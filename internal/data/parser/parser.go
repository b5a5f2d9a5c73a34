package parser

import (
	"fmt"
	"sync"
	"time"

	"github.com/penwyp/go-storyteller/internal/core/model"
	"github.com/penwyp/go-storyteller/internal/data/scanner"
	"github.com/penwyp/go-storyteller/internal/util"
)

// SourceParser turns one raw artifact into zero or more normalized
// events. Implementations are pure over the artifact they are given:
// same input yields the same events, with the injected clock used only
// for defaults when the source carries no usable timestamp.
type SourceParser interface {
	SourceType() model.SourceType
	Parse(artifact string, now time.Time) ([]model.Event, error)
}

// registry maps each source kind to its parser. Source kinds are added
// by registering a table entry, not by branching in calling code.
var registry = map[model.SourceType]SourceParser{
	model.SourceCopilot:  &CopilotParser{},
	model.SourceCalendar: &CalendarParser{},
	model.SourceEmail:    &EmailParser{},
	model.SourceGithub:   &GithubParser{},
	model.SourceNotes:    &NotesParser{},
}

// ForSource returns the parser registered for the given source kind.
func ForSource(st model.SourceType) (SourceParser, error) {
	p, ok := registry[st]
	if !ok {
		return nil, fmt.Errorf("no parser registered for source type %s", st)
	}
	return p, nil
}

// ParseResult represents the outcome of parsing a single artifact.
type ParseResult struct {
	Artifact scanner.Artifact
	Events   []model.Event
	Error    error
}

// Parser drives concurrent parsing of many artifacts.
type Parser struct {
	concurrency int
	clock       func() time.Time
}

// NewParser creates a new Parser instance.
func NewParser(concurrency int) *Parser {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Parser{concurrency: concurrency, clock: time.Now}
}

// SetClock replaces the default-time source, keeping batch parses
// deterministic under test.
func (p *Parser) SetClock(clock func() time.Time) {
	p.clock = clock
}

// ParseArtifact parses one artifact with the parser its source kind
// selects, normalizing every produced event.
func (p *Parser) ParseArtifact(artifact scanner.Artifact) ([]model.Event, error) {
	sp, err := ForSource(artifact.SourceType)
	if err != nil {
		return nil, err
	}

	events, err := sp.Parse(artifact.Path, p.clock())
	if err != nil {
		return nil, err
	}

	for i := range events {
		events[i] = Normalize(events[i])
	}
	return events, nil
}

// ParseArtifacts parses multiple artifacts concurrently and returns a
// channel of ParseResult. A failed artifact yields a result carrying
// its error; it never stops the rest of the batch.
func (p *Parser) ParseArtifacts(artifacts []scanner.Artifact) <-chan ParseResult {
	start := time.Now()
	results := make(chan ParseResult, len(artifacts))
	var wg sync.WaitGroup

	util.LogDebug(fmt.Sprintf("Start concurrent parsing of %d artifacts, concurrency: %d", len(artifacts), p.concurrency))

	semaphore := make(chan struct{}, p.concurrency)

	for _, artifact := range artifacts {
		wg.Add(1)
		go func(a scanner.Artifact) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			events, err := p.ParseArtifact(a)
			if err != nil {
				util.LogDebug(fmt.Sprintf("Artifact parsing failed: %s - %v", a.Path, err))
			}

			results <- ParseResult{
				Artifact: a,
				Events:   events,
				Error:    err,
			}
		}(artifact)
	}

	go func() {
		wg.Wait()
		close(results)
		util.LogDebug(fmt.Sprintf("Concurrent parsing finished, total duration: %v", time.Since(start)))
	}()

	return results
}
