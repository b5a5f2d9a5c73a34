package model

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// SourceType identifies the origin of a raw artifact.
type SourceType string

const (
	SourceCopilot  SourceType = "copilot"
	SourceCalendar SourceType = "calendar"
	SourceEmail    SourceType = "email"
	SourceGithub   SourceType = "github"
	SourceNotes    SourceType = "notes"
)

// AllSourceTypes lists every valid source type in a stable order.
var AllSourceTypes = []SourceType{
	SourceCopilot,
	SourceCalendar,
	SourceEmail,
	SourceGithub,
	SourceNotes,
}

// ParseSourceType converts a string to a SourceType, rejecting unknown values.
func ParseSourceType(s string) (SourceType, error) {
	st := SourceType(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown source type: %q", s)
	}
	return st, nil
}

// Valid reports whether st is one of the closed source type set.
func (st SourceType) Valid() bool {
	switch st {
	case SourceCopilot, SourceCalendar, SourceEmail, SourceGithub, SourceNotes:
		return true
	}
	return false
}

func (st SourceType) String() string {
	return string(st)
}

// UnmarshalJSON enforces the closed enumeration on decode.
func (st *SourceType) UnmarshalJSON(data []byte) error {
	var s string
	if err := sonic.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseSourceType(s)
	if err != nil {
		return err
	}
	*st = parsed
	return nil
}

// TimestampLayout is the serialized form of every event timestamp:
// ISO 8601 without a zone offset, minute-resolution fields with
// seconds fixed at zero.
const TimestampLayout = "2006-01-02T15:04:05"

// Timestamp is a naive wall-clock time canonicalized to minute
// resolution. The zone offset of the upstream value is dropped, not
// converted, so timestamps from different sources compare on their
// literal wall-clock fields.
type Timestamp struct {
	time.Time
}

// NewTimestamp canonicalizes t into a naive minute-resolution Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{time.Date(
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), 0, 0,
		time.UTC,
	)}
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(ts.Format(TimestampLayout))
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := sonic.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid event timestamp %q: %w", s, err)
	}
	*ts = NewTimestamp(t)
	return nil
}

// Before reports whether ts is strictly earlier than other.
func (ts Timestamp) Before(other Timestamp) bool {
	return ts.Time.Before(other.Time)
}

// Event is one normalized, immutable record of an activity occurrence.
// Events are created only by source parsers; the ingestion store never
// mutates them in place.
type Event struct {
	Timestamp  Timestamp         `json:"timestamp"`
	SourceType SourceType        `json:"source_type"`
	Title      string            `json:"title"`
	Summary    string            `json:"summary,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Less defines the canonical event ordering: timestamp ascending, ties
// broken by source type then title so that repeated loads are
// deterministic.
func (e Event) Less(other Event) bool {
	if !e.Timestamp.Equal(other.Timestamp.Time) {
		return e.Timestamp.Before(other.Timestamp)
	}
	if e.SourceType != other.SourceType {
		return e.SourceType < other.SourceType
	}
	return e.Title < other.Title
}
