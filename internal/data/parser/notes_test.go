package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-storyteller/internal/core/model"
)

func TestNotesParserDatedSections(t *testing.T) {
	content := `# 2025-01-13 - Planning
Sketched the ingestion pipeline.

# 2025-01-15 - Review
Walked through the dedup rules.
Agreed on the identity key.
`
	path := writeArtifact(t, "worklog.md", content)

	events, err := (&NotesParser{}).Parse(path, testClock)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, model.SourceNotes, events[0].SourceType)
	assert.Equal(t, time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), events[0].Timestamp.Time)
	assert.Equal(t, "Planning", events[0].Title)
	assert.Contains(t, events[0].Summary, "Sketched the ingestion pipeline.")
	assert.NotContains(t, events[0].Summary, "dedup rules")

	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), events[1].Timestamp.Time)
	assert.Equal(t, "Review", events[1].Title)
	assert.Contains(t, events[1].Summary, "Agreed on the identity key.")
}

func TestNotesParserFilenameDateFallback(t *testing.T) {
	path := writeArtifact(t, "standup_2025_01_15.txt", "Talked about the release.\nNo blockers.\n")

	events, err := (&NotesParser{}).Parse(path, testClock)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), events[0].Timestamp.Time)
	assert.Equal(t, "Talked about the release.", events[0].Title,
		"first content line serves as the title")
}

func TestNotesParserTitleFromFilenameWhenBodyIsBare(t *testing.T) {
	path := writeArtifact(t, "release_notes.md", "2025-01-15\n")

	events, err := (&NotesParser{}).Parse(path, testClock)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Release Notes", events[0].Title)
}

func TestNotesParserNoDateMarker(t *testing.T) {
	path := writeArtifact(t, "ideas.md", "Some ideas without any date at all.\n")

	_, err := (&NotesParser{}).Parse(path, testClock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no resolvable date marker")
}
