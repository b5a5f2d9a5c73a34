package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-storyteller/internal/core/model"
)

func TestEmailParserBasicMessage(t *testing.T) {
	raw := "From: Alice <alice@example.com>\r\n" +
		"To: Bob <bob@example.com>\r\n" +
		"Subject: Deploy window tonight\r\n" +
		"Date: Wed, 15 Jan 2025 09:30:00 -0500\r\n" +
		"\r\n" +
		"The deploy starts at nine.\r\nDouble-check the migration first.\r\n"
	path := writeArtifact(t, "deploy.eml", raw)

	events, err := (&EmailParser{}).Parse(path, testClock)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, model.SourceEmail, ev.SourceType)
	assert.Equal(t, "Deploy window tonight", ev.Title)
	assert.Equal(t, time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC), ev.Timestamp.Time,
		"wall-clock send time, offset dropped")
	assert.Contains(t, ev.Summary, "Double-check the migration first.")
	assert.Equal(t, "Alice <alice@example.com>", ev.Metadata["from"])
	assert.Equal(t, "Bob <bob@example.com>", ev.Metadata["to"])
}

func TestEmailParserMissingDateFallsBackToClock(t *testing.T) {
	raw := "From: alice@example.com\r\n" +
		"Subject: No date on this one\r\n" +
		"\r\n" +
		"body\r\n"
	path := writeArtifact(t, "undated.eml", raw)

	events, err := (&EmailParser{}).Parse(path, testClock)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.NewTimestamp(testClock).Time, events[0].Timestamp.Time)
}

func TestEmailParserNotAMessage(t *testing.T) {
	path := writeArtifact(t, "broken.eml", "this is not an rfc 5322 message")

	_, err := (&EmailParser{}).Parse(path, testClock)
	assert.Error(t, err)
}
