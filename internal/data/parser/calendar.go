package parser

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/penwyp/go-storyteller/internal/core/model"
	"github.com/penwyp/go-storyteller/internal/util"
)

// maxRecurrences caps the expansion of a recurring calendar entry that
// carries neither COUNT nor UNTIL: 52 occurrences, one year of a
// weekly meeting. Unbounded rules are never expanded indefinitely.
const maxRecurrences = 52

// CalendarParser reads ICS calendar exports. Each concrete VEVENT
// occurrence becomes one event at its start time; recurring entries
// are expanded per occurrence, never left as a single placeholder.
type CalendarParser struct{}

func (p *CalendarParser) SourceType() model.SourceType {
	return model.SourceCalendar
}

// vevent holds the property subset this tool reads from a VEVENT.
type vevent struct {
	start       time.Time
	end         time.Time
	hasEnd      bool
	summary     string
	description string
	location    string
	attendees   int
	rrule       string
}

func (p *CalendarParser) Parse(artifact string, now time.Time) ([]model.Event, error) {
	file, err := os.Open(artifact)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	lines, err := unfoldICS(file)
	if err != nil {
		return nil, fmt.Errorf("read calendar %s: %w", artifact, err)
	}

	var events []model.Event
	var current *vevent
	parsedAny := false

	for _, line := range lines {
		switch {
		case line == "BEGIN:VEVENT":
			current = &vevent{}
		case line == "END:VEVENT":
			if current != nil && !current.start.IsZero() {
				events = append(events, p.expand(current, artifact)...)
				parsedAny = true
			}
			current = nil
		case current != nil:
			applyProperty(current, line)
		case strings.HasPrefix(line, "BEGIN:VCALENDAR"):
			parsedAny = true
		}
	}

	if !parsedAny {
		return nil, fmt.Errorf("parse calendar %s: no VCALENDAR content", artifact)
	}
	return events, nil
}

// unfoldICS reads content lines, joining RFC 5545 folded continuations
// (lines starting with a space or tab).
func unfoldICS(file *os.File) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}

func applyProperty(ev *vevent, line string) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return
	}
	name := line[:idx]
	value := line[idx+1:]

	// Parameters (DTSTART;TZID=... or ;VALUE=DATE) do not change how a
	// value is read: offsets and zone hints are dropped either way.
	if semi := strings.IndexByte(name, ';'); semi >= 0 {
		name = name[:semi]
	}

	switch strings.ToUpper(name) {
	case "DTSTART":
		if t, err := util.ParseTimestamp(value); err == nil {
			ev.start = t
		}
	case "DTEND":
		if t, err := util.ParseTimestamp(value); err == nil {
			ev.end = t
			ev.hasEnd = true
		}
	case "SUMMARY":
		ev.summary = unescapeICS(value)
	case "DESCRIPTION":
		ev.description = unescapeICS(value)
	case "LOCATION":
		ev.location = unescapeICS(value)
	case "ATTENDEE":
		ev.attendees++
	case "RRULE":
		ev.rrule = value
	}
}

func unescapeICS(s string) string {
	r := strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)
	return r.Replace(s)
}

// expand turns one VEVENT into its concrete occurrences.
func (p *CalendarParser) expand(ev *vevent, artifact string) []model.Event {
	occurrences := []time.Time{ev.start}
	if ev.rrule != "" {
		occurrences = expandRRule(ev.start, ev.rrule)
	}

	duration := time.Duration(0)
	if ev.hasEnd {
		duration = ev.end.Sub(ev.start)
	}

	out := make([]model.Event, 0, len(occurrences))
	for _, occ := range occurrences {
		metadata := map[string]string{"file": artifact}
		if ev.location != "" {
			metadata["location"] = ev.location
		}
		if ev.hasEnd {
			metadata["end"] = occ.Add(duration).Format(model.TimestampLayout)
		}
		if ev.attendees > 0 {
			metadata["attendees"] = strconv.Itoa(ev.attendees)
		}

		var summaryParts []string
		if ev.description != "" {
			summaryParts = append(summaryParts, ev.description)
		}
		if ev.location != "" {
			summaryParts = append(summaryParts, "Location: "+ev.location)
		}
		if ev.attendees > 0 {
			summaryParts = append(summaryParts, fmt.Sprintf("%d attendees", ev.attendees))
		}

		out = append(out, model.Event{
			Timestamp:  model.NewTimestamp(occ),
			SourceType: model.SourceCalendar,
			Title:      ev.summary,
			Summary:    strings.Join(summaryParts, "\n"),
			Metadata:   metadata,
		})
	}
	return out
}

// expandRRule generates concrete start times for the supported rule
// subset: FREQ=DAILY|WEEKLY|MONTHLY with INTERVAL, COUNT and UNTIL.
// Rules without COUNT or UNTIL stop at maxRecurrences.
func expandRRule(start time.Time, rule string) []time.Time {
	freq := ""
	interval := 1
	count := 0
	var until time.Time

	for _, part := range strings.Split(rule, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			freq = strings.ToUpper(kv[1])
		case "INTERVAL":
			if n, err := strconv.Atoi(kv[1]); err == nil && n > 0 {
				interval = n
			}
		case "COUNT":
			if n, err := strconv.Atoi(kv[1]); err == nil && n > 0 {
				count = n
			}
		case "UNTIL":
			if t, err := util.ParseTimestamp(kv[1]); err == nil {
				until = t
			}
		}
	}

	var step func(time.Time) time.Time
	switch freq {
	case "DAILY":
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, interval) }
	case "WEEKLY":
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 7*interval) }
	case "MONTHLY":
		step = func(t time.Time) time.Time { return t.AddDate(0, interval, 0) }
	default:
		// Unsupported frequency: keep the single concrete start.
		return []time.Time{start}
	}

	limit := maxRecurrences
	if count > 0 && count < limit {
		limit = count
	}

	occurrences := make([]time.Time, 0, limit)
	for t := start; len(occurrences) < limit; t = step(t) {
		if !until.IsZero() && t.After(until) {
			break
		}
		occurrences = append(occurrences, t)
	}
	return occurrences
}
