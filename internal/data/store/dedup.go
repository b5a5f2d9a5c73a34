package store

import (
	"strings"

	"github.com/penwyp/go-storyteller/internal/core/model"
)

// IdentityKey derives the duplicate-suppression key of an event:
// source type, minute-rounded timestamp, and the case-folded,
// whitespace-collapsed title. Two events with equal keys denote the
// same real occurrence. The source type is part of the key, so a
// calendar invite and a matching email are never merged; cross-source
// correlation is a reporting concern, not an ingestion one.
func IdentityKey(ev model.Event) string {
	var b strings.Builder
	b.WriteString(string(ev.SourceType))
	b.WriteByte('|')
	b.WriteString(ev.Timestamp.Format("2006-01-02T15:04"))
	b.WriteByte('|')
	b.WriteString(normalizeTitle(ev.Title))
	return b.String()
}

// normalizeTitle case-folds and collapses runs of whitespace so
// cosmetic differences do not defeat duplicate detection.
func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// dedupIndex tracks seen identity keys during a merge.
type dedupIndex map[string]struct{}

func newDedupIndex(events []model.Event) dedupIndex {
	idx := make(dedupIndex, len(events))
	for _, ev := range events {
		idx[IdentityKey(ev)] = struct{}{}
	}
	return idx
}

// Seen reports whether an event with the same identity is already
// indexed.
func (d dedupIndex) Seen(ev model.Event) bool {
	_, ok := d[IdentityKey(ev)]
	return ok
}

// Mark records the event's identity.
func (d dedupIndex) Mark(ev model.Event) {
	d[IdentityKey(ev)] = struct{}{}
}
