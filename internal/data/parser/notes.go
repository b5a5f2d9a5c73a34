package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/penwyp/go-storyteller/internal/core/model"
	"github.com/penwyp/go-storyteller/internal/util"
)

var datePattern = regexp.MustCompile(`(\d{4})[-_](\d{2})[-_](\d{2})`)

// NotesParser reads freeform markdown and text notes. Explicit date
// markers (a YYYY-MM-DD token in a heading or line, or in the
// filename) anchor the content; text between two markers, or from a
// marker to end of file, becomes one event at that date. A note with
// no resolvable date is an error the caller sees, never a silent drop.
type NotesParser struct{}

func (p *NotesParser) SourceType() model.SourceType {
	return model.SourceNotes
}

func (p *NotesParser) Parse(artifact string, now time.Time) ([]model.Event, error) {
	data, err := os.ReadFile(artifact)
	if err != nil {
		return nil, err
	}
	content := string(data)
	lines := strings.Split(content, "\n")

	// Marker lines split the note into dated sections.
	type section struct {
		date  time.Time
		first int // line index of the marker
	}
	var sections []section
	for i, line := range lines {
		if date, ok := extractDate(line); ok {
			sections = append(sections, section{date: date, first: i})
		}
	}

	if len(sections) == 0 {
		// A date in the filename anchors the whole note.
		date, ok := extractDate(filepath.Base(artifact))
		if !ok {
			return nil, fmt.Errorf("note %s has no resolvable date marker", artifact)
		}
		return []model.Event{p.toEvent(artifact, date, lines, 0, len(lines))}, nil
	}

	events := make([]model.Event, 0, len(sections))
	for i, sec := range sections {
		end := len(lines)
		if i+1 < len(sections) {
			end = sections[i+1].first
		}
		events = append(events, p.toEvent(artifact, sec.date, lines, sec.first, end))
	}
	return events, nil
}

func (p *NotesParser) toEvent(artifact string, date time.Time, lines []string, first, end int) model.Event {
	body := strings.TrimSpace(strings.Join(lines[first:end], "\n"))

	title := sectionTitle(lines[first:end])
	if title == "" {
		stem := strings.TrimSuffix(filepath.Base(artifact), filepath.Ext(artifact))
		title = titleCase(strings.NewReplacer("_", " ", "-", " ").Replace(stem))
	}

	return model.Event{
		Timestamp:  model.NewTimestamp(date),
		SourceType: model.SourceNotes,
		Title:      title,
		Summary:    body,
		Metadata:   map[string]string{"file": artifact},
	}
}

// sectionTitle derives a title from the section's marker or heading
// line: heading hashes and the date token itself are stripped.
func sectionTitle(lines []string) string {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cleaned := strings.TrimSpace(strings.TrimLeft(line, "#"))
		cleaned = strings.TrimSpace(datePattern.ReplaceAllString(cleaned, ""))
		cleaned = strings.Trim(cleaned, "-–: ")
		if cleaned != "" {
			return cleaned
		}
	}
	return ""
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}

// extractDate finds the first YYYY-MM-DD (or YYYY_MM_DD) token in s.
func extractDate(s string) (time.Time, bool) {
	match := datePattern.FindStringSubmatch(s)
	if match == nil {
		return time.Time{}, false
	}
	raw := fmt.Sprintf("%s-%s-%s", match[1], match[2], match[3])
	t, err := util.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
