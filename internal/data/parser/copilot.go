package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-storyteller/internal/core/model"
	"github.com/penwyp/go-storyteller/internal/util"
)

// sessionEntry mirrors the loosely structured JSON of assistant
// session exports. Field names vary between exporters, so every
// plausible spelling is declared and probed in order.
type sessionEntry struct {
	Timestamp any    `json:"timestamp"`
	Created   any    `json:"created"`
	Date      any    `json:"date"`
	StartTime any    `json:"startTime"`
	Time      any    `json:"time"`
	Title     string `json:"title"`
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	Prompt    string `json:"prompt"`
	Content   string `json:"content"`
	Response  string `json:"response"`
	Output    string `json:"output"`
	Summary   string `json:"summary"`
}

// CopilotParser reads structured assistant-session logs: a JSON file
// holding one session object or an array of them, or a JSONL file with
// one session per line.
type CopilotParser struct{}

func (p *CopilotParser) SourceType() model.SourceType {
	return model.SourceCopilot
}

func (p *CopilotParser) Parse(artifact string, now time.Time) ([]model.Event, error) {
	data, err := os.ReadFile(artifact)
	if err != nil {
		return nil, err
	}

	entries, err := decodeSessions(data)
	if err != nil {
		return nil, fmt.Errorf("parse session log %s: %w", artifact, err)
	}

	events := make([]model.Event, 0, len(entries))
	for _, entry := range entries {
		events = append(events, p.toEvent(entry, artifact, now))
	}
	return events, nil
}

// decodeSessions accepts an array of objects, a single object
// (possibly pretty-printed), or line-delimited objects.
func decodeSessions(data []byte) ([]sessionEntry, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var entries []sessionEntry
		if err := sonic.Unmarshal([]byte(trimmed), &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	var single sessionEntry
	if err := sonic.Unmarshal([]byte(trimmed), &single); err == nil {
		return []sessionEntry{single}, nil
	}

	// Fall back to line-delimited objects (JSONL exports).
	var entries []sessionEntry
	lineCount := 0
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lineCount++
		var entry sessionEntry
		if err := sonic.Unmarshal([]byte(line), &entry); err != nil {
			if lineCount == 1 {
				return nil, err
			}
			util.LogDebug(fmt.Sprintf("Skip invalid session log line %d - %v", lineCount, err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (p *CopilotParser) toEvent(entry sessionEntry, artifact string, now time.Time) model.Event {
	timestamp := now
	for _, candidate := range []any{entry.Timestamp, entry.Created, entry.Date, entry.StartTime, entry.Time} {
		if t, ok := coerceTime(candidate); ok {
			timestamp = t
			break
		}
	}

	title := firstNonEmpty(entry.Title, entry.Name, entry.Subject)
	if title == "" && entry.Prompt != "" {
		title = firstLine(entry.Prompt)
	}
	if title == "" {
		title = fmt.Sprintf("Session (%s)", strings.TrimSuffix(filepath.Base(artifact), filepath.Ext(artifact)))
	}

	var summaryParts []string
	for _, part := range []string{entry.Content, entry.Response, entry.Output, entry.Summary} {
		if part != "" {
			summaryParts = append(summaryParts, part)
		}
	}

	return model.Event{
		Timestamp:  model.NewTimestamp(timestamp),
		SourceType: model.SourceCopilot,
		Title:      title,
		Summary:    strings.Join(summaryParts, "\n"),
		Metadata:   map[string]string{"file": artifact},
	}
}

// coerceTime converts an untyped JSON timestamp value (epoch number or
// datetime string) to a naive time.
func coerceTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case float64:
		secs := int64(val)
		if secs > 1e12 {
			secs /= 1000
		}
		return util.StripZone(time.Unix(secs, 0).UTC()), true
	case string:
		t, err := util.ParseTimestamp(val)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
