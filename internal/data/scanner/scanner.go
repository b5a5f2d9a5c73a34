package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/penwyp/go-storyteller/internal/core/model"
	"github.com/penwyp/go-storyteller/internal/util"
)

// Artifact is one raw input resolved to a source kind. For the github
// kind Path is a repository root directory; for every other kind it is
// a single file.
type Artifact struct {
	Path       string
	SourceType model.SourceType
}

// extToSource is the static detection table from file extension to
// source kind. New source kinds register here and in the parser
// registry, not in calling code.
var extToSource = map[string]model.SourceType{
	".md":    model.SourceNotes,
	".txt":   model.SourceNotes,
	".ics":   model.SourceCalendar,
	".eml":   model.SourceEmail,
	".json":  model.SourceCopilot,
	".jsonl": model.SourceCopilot,
}

// DetectSourceType maps a path to a source kind: by extension for
// files, by the presence of version-control metadata for directories.
// A path that matches neither returns an error.
func DetectSourceType(path string) (model.SourceType, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	if info.IsDir() {
		if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
			return model.SourceGithub, nil
		}
		return "", fmt.Errorf("cannot detect source type of directory %s: no version-control metadata", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if st, ok := extToSource[ext]; ok {
		return st, nil
	}
	return "", fmt.Errorf("cannot detect source type of %s: unrecognized extension %q", path, ext)
}

// Scanner resolves input paths into parseable artifacts.
type Scanner struct {
	override model.SourceType // empty = auto-detect
}

// NewScanner creates a Scanner that auto-detects source kinds.
func NewScanner() *Scanner {
	return &Scanner{}
}

// NewScannerWithOverride creates a Scanner that assigns every scanned
// file the given source kind, bypassing detection entirely.
func NewScannerWithOverride(st model.SourceType) *Scanner {
	return &Scanner{override: st}
}

// ScanResult separates resolvable artifacts from inputs that could not
// be mapped to a source kind. Unresolved inputs are reported, never
// silently skipped.
type ScanResult struct {
	Artifacts  []Artifact
	Unresolved []error
}

// Scan resolves path, which may be a single file, a repository root,
// or a directory tree of mixed artifacts.
func (s *Scanner) Scan(path string) (*ScanResult, error) {
	start := time.Now()
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{}

	if !info.IsDir() {
		s.resolve(path, result)
		return result, nil
	}

	// A repository root is one artifact by itself.
	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		result.Artifacts = append(result.Artifacts, Artifact{Path: path, SourceType: model.SourceGithub})
		if s.override != "" && s.override != model.SourceGithub {
			return result, fmt.Errorf("source type %s requested for repository directory %s", s.override, path)
		}
		return result, nil
	}

	fileCount := 0
	err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip path (error): %s - %v", p, err))
			return nil
		}
		if fi.IsDir() {
			// Nested repositories inside a data directory count as
			// github artifacts and are not descended into further.
			if p != path {
				if _, err := os.Stat(filepath.Join(p, ".git")); err == nil {
					result.Artifacts = append(result.Artifacts, Artifact{Path: p, SourceType: model.SourceGithub})
					return filepath.SkipDir
				}
			}
			return nil
		}
		fileCount++
		s.resolve(p, result)
		return nil
	})

	util.LogDebug(fmt.Sprintf("Scan completed: duration %v, %d files inspected, %d artifacts, %d unresolved",
		time.Since(start), fileCount, len(result.Artifacts), len(result.Unresolved)))

	return result, err
}

func (s *Scanner) resolve(path string, result *ScanResult) {
	if s.override != "" {
		result.Artifacts = append(result.Artifacts, Artifact{Path: path, SourceType: s.override})
		return
	}

	st, err := DetectSourceType(path)
	if err != nil {
		result.Unresolved = append(result.Unresolved, err)
		return
	}
	result.Artifacts = append(result.Artifacts, Artifact{Path: path, SourceType: st})
}
