package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/penwyp/go-storyteller/internal/core/model"
)

const (
	// MaxSummaryLen bounds every event summary; longer source text is
	// truncated with TruncationMarker so the final length is exactly
	// MaxSummaryLen.
	MaxSummaryLen = 500

	// MaxTitleLen bounds every event title.
	MaxTitleLen = 200

	// TruncationMarker closes a truncated summary.
	TruncationMarker = "..."
)

// Normalize enforces the common event schema on a freshly parsed
// event: non-empty bounded title, bounded summary, canonical
// minute-resolution timestamp. It never fabricates metadata.
func Normalize(ev model.Event) model.Event {
	ev.Timestamp = model.NewTimestamp(ev.Timestamp.Time)

	ev.Title = strings.TrimSpace(ev.Title)
	if ev.Title == "" {
		ev.Title = fmt.Sprintf("%s event", ev.SourceType)
	}
	ev.Title = TruncateText(ev.Title, MaxTitleLen)

	ev.Summary = TruncateText(strings.TrimSpace(ev.Summary), MaxSummaryLen)

	return ev
}

// TruncateText bounds s to limit runes. Truncated text ends with the
// truncation marker and is cut back to the previous word boundary when
// one is reasonably close, so words are not split mid-way.
func TruncateText(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	if limit <= len(TruncationMarker) {
		return string(runes[:limit])
	}
	cut := limit - len(TruncationMarker)

	// Back up to a word boundary unless that would discard most of the
	// text (a single unbroken token stays hard-cut).
	boundary := cut
	for boundary > 0 && !isSpace(runes[boundary-1]) {
		boundary--
	}
	if boundary > cut/2 {
		cut = boundary
	}

	out := strings.TrimRight(string(runes[:cut]), " \t\n") + TruncationMarker
	// Word-boundary trimming shortens the result; pad is never needed,
	// but a hard cut must still land exactly on the limit.
	if utf8.RuneCountInString(out) > limit {
		out = string([]rune(out)[:limit])
	}
	return out
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
