package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampFormats(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339 with offset dropped", "2025-01-15T09:30:00+05:00", time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)},
		{"rfc3339 utc", "2025-01-15T09:30:00Z", time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)},
		{"iso without zone", "2025-01-15T09:30:00", time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)},
		{"space separated", "2025-01-15 09:30:00", time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)},
		{"bare date", "2025-01-15", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"rfc2822", "Wed, 15 Jan 2025 09:30:00 -0800", time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)},
		{"ics datetime utc", "20250115T093000Z", time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)},
		{"ics floating", "20250115T093000", time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)},
		{"ics date", "20250115", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"epoch seconds", "1736933400", StripZone(time.Unix(1736933400, 0).UTC())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.raw)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "yesterday", "2025-13-45"} {
		_, err := ParseTimestamp(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestStripZoneKeepsWallClock(t *testing.T) {
	loc := time.FixedZone("X", -7*3600)
	in := time.Date(2025, 6, 1, 23, 45, 10, 0, loc)
	out := StripZone(in)

	assert.Equal(t, 23, out.Hour())
	assert.Equal(t, 45, out.Minute())
	assert.Equal(t, time.UTC, out.Location())
}

func TestDayWindow(t *testing.T) {
	anchor := time.Date(2025, 1, 15, 13, 37, 0, 0, time.UTC)
	start, end := DayWindow(anchor)

	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC), end)
}

func TestWeekWindow(t *testing.T) {
	// 2025-01-15 is a Wednesday; its week runs Monday the 13th to
	// Monday the 20th.
	anchor := time.Date(2025, 1, 15, 13, 37, 0, 0, time.UTC)
	start, end := WeekWindow(anchor)

	assert.Equal(t, time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), end)
}

func TestWeekWindowOnBoundaries(t *testing.T) {
	monday := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	start, _ := WeekWindow(monday)
	assert.Equal(t, monday, start)

	sunday := time.Date(2025, 1, 19, 23, 59, 0, 0, time.UTC)
	start, end := WeekWindow(sunday)
	assert.Equal(t, monday, start)
	assert.Equal(t, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), end)
}
