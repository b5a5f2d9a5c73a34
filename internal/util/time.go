package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Upstream timestamp formats, tried in order. Every source feeds
// through this one table so cross-source comparisons stay naive
// wall-clock comparisons: layouts carrying an offset are parsed and
// then stripped of it, never converted to a target zone.
var timestampLayouts = []string{
	time.RFC3339Nano,      // structured session logs, git %aI
	time.RFC3339,          //
	"2006-01-02T15:04:05", // ISO 8601 without zone
	"2006-01-02T15:04",    //
	"2006-01-02 15:04:05", //
	"2006-01-02 15:04",    //
	"2006-01-02",          // bare dates (notes markers, ICS VALUE=DATE)
	time.RFC1123Z,         // RFC 2822 email Date headers
	time.RFC1123,          //
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"20060102T150405Z", // ICS date-time, UTC designator
	"20060102T150405",  // ICS floating date-time
	"20060102",         // ICS date
}

// ParseTimestamp parses a raw timestamp string in any of the supported
// upstream formats and returns the naive wall-clock time. The zone
// offset, if one was present, is dropped.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	// Epoch seconds or milliseconds show up in session log exports.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > 1e12 {
			n /= 1000
		}
		return StripZone(time.Unix(n, 0).UTC()), nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return StripZone(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", raw)
}

// StripZone drops the location of t, keeping its wall-clock fields.
func StripZone(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// DayWindow returns the half-open [00:00, next day 00:00) window of
// the day containing anchor.
func DayWindow(anchor time.Time) (time.Time, time.Time) {
	start := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// WeekWindow returns the half-open [Monday 00:00, following Monday
// 00:00) window of the week containing anchor.
func WeekWindow(anchor time.Time) (time.Time, time.Time) {
	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}
