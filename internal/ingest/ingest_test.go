package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-storyteller/internal/core/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newTestIngester(t *testing.T) (*Ingester, string) {
	t.Helper()
	dir := t.TempDir()
	ing, err := New(&Config{
		StoreFile: filepath.Join(dir, "out", "ingested.json"),
		CacheDir:  filepath.Join(dir, "cache"),
	})
	require.NoError(t, err)
	return ing, dir
}

func TestIngestMixedBatch(t *testing.T) {
	ing, dir := newTestIngester(t)
	data := filepath.Join(dir, "data")

	writeFile(t, filepath.Join(data, "worklog.md"),
		"# 2025-01-15 - Review\nWalked through the plan.\n")
	writeFile(t, filepath.Join(data, "week.ics"),
		"BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\nDTSTART:20250115T093000Z\r\nSUMMARY:Sprint planning\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n")
	writeFile(t, filepath.Join(data, "sessions.json"),
		`[{"timestamp": "2025-01-15T11:00:00Z", "prompt": "question", "response": "answer"}]`)

	report, err := ing.Run(data)
	require.NoError(t, err)

	assert.Equal(t, 3, report.ArtifactCount)
	assert.Equal(t, 3, report.EventCount)
	assert.Equal(t, 3, report.Inserted)
	assert.Zero(t, report.Duplicates)
	assert.Empty(t, report.Failures)

	events, err := ing.Store().LoadAll()
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestIngestPartialFailure(t *testing.T) {
	ing, dir := newTestIngester(t)
	data := filepath.Join(dir, "data")

	for i := 0; i < 8; i++ {
		writeFile(t, filepath.Join(data, fmt.Sprintf("note-%d.md", i)),
			fmt.Sprintf("# 2025-01-%02d - Entry %d\nwork happened\n", i+10, i))
	}
	writeFile(t, filepath.Join(data, "broken.json"), "{not json")
	writeFile(t, filepath.Join(data, "undated.md"), "no date marker anywhere\n")

	report, err := ing.Run(data)
	require.NoError(t, err, "failing artifacts never abort the batch")

	assert.Equal(t, 10, report.ArtifactCount)
	assert.Equal(t, 8, report.EventCount)
	assert.Equal(t, 8, report.Inserted)
	require.Len(t, report.Failures, 2)
}

func TestIngestIdempotent(t *testing.T) {
	ing, dir := newTestIngester(t)
	data := filepath.Join(dir, "data")
	writeFile(t, filepath.Join(data, "worklog.md"),
		"# 2025-01-15 - Review\nWalked through the plan.\n")

	first, err := ing.Run(data)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Inserted)

	second, err := ing.Run(data)
	require.NoError(t, err)
	assert.Zero(t, second.Inserted)
	assert.Equal(t, 1, second.Duplicates)

	events, err := ing.Store().LoadAll()
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestIngestSourceOverride(t *testing.T) {
	dir := t.TempDir()
	ing, err := New(&Config{
		StoreFile:  filepath.Join(dir, "ingested.json"),
		SourceType: model.SourceNotes,
	})
	require.NoError(t, err)

	// .log would be unresolved under auto-detection.
	data := filepath.Join(dir, "data")
	writeFile(t, filepath.Join(data, "journal.log"), "# 2025-01-15\nforced into the notes parser\n")

	report, err := ing.Run(data)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Empty(t, report.Failures)

	events, err := ing.Store().LoadAll()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.SourceNotes, events[0].SourceType)
}

func TestIngestUnresolvedInputReported(t *testing.T) {
	ing, dir := newTestIngester(t)
	data := filepath.Join(dir, "data")
	writeFile(t, filepath.Join(data, "photo.png"), "binary-ish")

	report, err := ing.Run(data)
	require.NoError(t, err)
	assert.Zero(t, report.ArtifactCount)
	require.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[0].Error(), "unrecognized extension")
}
