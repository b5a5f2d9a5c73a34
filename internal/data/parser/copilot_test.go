package parser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-storyteller/internal/core/model"
)

var testClock = time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCopilotParserArrayOfSessions(t *testing.T) {
	content := `[
  {"timestamp": "2025-01-15T09:30:00Z", "prompt": "How do I mock a clock?\nMore detail.", "response": "Inject a time source."},
  {"created": "2025-01-15T11:00:00", "title": "Refactor session", "content": "Moved the parser registry."}
]`
	path := writeArtifact(t, "sessions.json", content)

	events, err := (&CopilotParser{}).Parse(path, testClock)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, model.SourceCopilot, events[0].SourceType)
	assert.Equal(t, "How do I mock a clock?", events[0].Title)
	assert.Equal(t, "Inject a time source.", events[0].Summary)
	assert.Equal(t, time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC), events[0].Timestamp.Time)

	assert.Equal(t, "Refactor session", events[1].Title)
	assert.Equal(t, time.Date(2025, 1, 15, 11, 0, 0, 0, time.UTC), events[1].Timestamp.Time)
}

func TestCopilotParserSingleObject(t *testing.T) {
	content := `{
  "startTime": 1736933400,
  "name": "Debugging session",
  "response": "Found the leak in the watcher."
}`
	path := writeArtifact(t, "session.json", content)

	events, err := (&CopilotParser{}).Parse(path, testClock)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Debugging session", events[0].Title)
	assert.Equal(t, time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC), events[0].Timestamp.Time)
}

func TestCopilotParserJSONL(t *testing.T) {
	content := `{"timestamp":"2025-01-15T09:00:00Z","prompt":"first","response":"one"}
not json at all
{"timestamp":"2025-01-15T10:00:00Z","prompt":"second","response":"two"}`
	path := writeArtifact(t, "sessions.jsonl", content)

	events, err := (&CopilotParser{}).Parse(path, testClock)
	require.NoError(t, err, "invalid lines after the first are skipped, not fatal")
	require.Len(t, events, 2)
	assert.Equal(t, "first", events[0].Title)
	assert.Equal(t, "second", events[1].Title)
}

func TestCopilotParserClockFallback(t *testing.T) {
	path := writeArtifact(t, "undated.json", `{"prompt": "no timestamp here", "response": "still an event"}`)

	events, err := (&CopilotParser{}).Parse(path, testClock)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.NewTimestamp(testClock).Time, events[0].Timestamp.Time)
}

func TestCopilotParserTitlePlaceholder(t *testing.T) {
	path := writeArtifact(t, "anon-session.json", `{"timestamp": "2025-01-15T09:00:00Z", "response": "output only"}`)

	events, err := (&CopilotParser{}).Parse(path, testClock)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Session (anon-session)", events[0].Title)
}

func TestCopilotParserCorruptFile(t *testing.T) {
	path := writeArtifact(t, "corrupt.json", `{definitely not json`)

	_, err := (&CopilotParser{}).Parse(path, testClock)
	assert.Error(t, err)
}
