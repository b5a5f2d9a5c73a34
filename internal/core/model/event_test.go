package model

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSourceType(t *testing.T) {
	for _, valid := range []string{"copilot", "calendar", "email", "github", "notes"} {
		st, err := ParseSourceType(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, st.String())
	}

	_, err := ParseSourceType("slack")
	assert.Error(t, err)
	_, err = ParseSourceType("")
	assert.Error(t, err)
}

func TestSourceTypeUnmarshalRejectsUnknown(t *testing.T) {
	var st SourceType
	err := sonic.Unmarshal([]byte(`"calendar"`), &st)
	require.NoError(t, err)
	assert.Equal(t, SourceCalendar, st)

	err = sonic.Unmarshal([]byte(`"telegram"`), &st)
	assert.Error(t, err)
}

func TestNewTimestampCanonicalizesToMinute(t *testing.T) {
	raw := time.Date(2025, 1, 15, 9, 30, 45, 123456789, time.UTC)
	ts := NewTimestamp(raw)

	assert.Equal(t, 2025, ts.Year())
	assert.Equal(t, 9, ts.Hour())
	assert.Equal(t, 30, ts.Minute())
	assert.Equal(t, 0, ts.Second())
	assert.Equal(t, 0, ts.Nanosecond())
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := NewTimestamp(time.Date(2025, 1, 15, 9, 30, 59, 0, time.UTC))

	data, err := sonic.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-15T09:30:00"`, string(data))

	var parsed Timestamp
	require.NoError(t, sonic.Unmarshal(data, &parsed))
	assert.True(t, parsed.Equal(ts.Time), "timestamp must compare equal after a serialize/reparse cycle")
}

func TestEventRoundTripPreservesFields(t *testing.T) {
	ev := Event{
		Timestamp:  NewTimestamp(time.Date(2025, 3, 1, 14, 5, 0, 0, time.UTC)),
		SourceType: SourceGithub,
		Title:      "Fix flaky watcher shutdown",
		Summary:    "The watcher goroutine leaked on early close.",
		Metadata:   map[string]string{"repo": "storyteller", "commit": "abc123"},
	}

	data, err := sonic.Marshal(ev)
	require.NoError(t, err)

	var parsed Event
	require.NoError(t, sonic.Unmarshal(data, &parsed))
	assert.Equal(t, ev.Title, parsed.Title)
	assert.Equal(t, ev.Summary, parsed.Summary)
	assert.Equal(t, ev.SourceType, parsed.SourceType)
	assert.Equal(t, ev.Metadata, parsed.Metadata)
	assert.True(t, parsed.Timestamp.Equal(ev.Timestamp.Time))
}

func TestEventLessOrdering(t *testing.T) {
	early := Event{Timestamp: NewTimestamp(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)), SourceType: SourceNotes, Title: "b"}
	late := Event{Timestamp: NewTimestamp(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)), SourceType: SourceCalendar, Title: "a"}

	assert.True(t, early.Less(late))
	assert.False(t, late.Less(early))

	// Tie on timestamp: source type decides.
	tieA := Event{Timestamp: early.Timestamp, SourceType: SourceCalendar, Title: "z"}
	tieB := Event{Timestamp: early.Timestamp, SourceType: SourceEmail, Title: "a"}
	assert.True(t, tieA.Less(tieB))

	// Tie on timestamp and source: title decides.
	tieC := Event{Timestamp: early.Timestamp, SourceType: SourceNotes, Title: "alpha"}
	tieD := Event{Timestamp: early.Timestamp, SourceType: SourceNotes, Title: "beta"}
	assert.True(t, tieC.Less(tieD))
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("day")
	require.NoError(t, err)
	assert.Equal(t, PeriodDay, p)

	p, err = ParsePeriod("week")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeek, p)

	_, err = ParsePeriod("month")
	assert.Error(t, err)
}
