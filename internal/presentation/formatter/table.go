package formatter

import (
	"fmt"
	"strings"

	"github.com/penwyp/go-storyteller/internal/core/model"
	"github.com/penwyp/go-storyteller/internal/util"
)

// TimelineTable renders an ordered event sequence as an aligned text
// table sized to the terminal.
type TimelineTable struct {
	width int
}

// NewTimelineTable creates a table renderer for the current terminal
// width.
func NewTimelineTable() *TimelineTable {
	return &TimelineTable{width: util.TerminalWidth()}
}

func (t *TimelineTable) Render(events []model.Event) string {
	if len(events) == 0 {
		return "No events.\n"
	}

	const timeCol = 16 // 2025-01-15 09:30
	sourceCol := len("calendar")
	titleCol := t.width - timeCol - sourceCol - 6
	if titleCol < 20 {
		titleCol = 20
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s\n",
		util.PadRight("TIME", timeCol),
		util.PadRight("SOURCE", sourceCol),
		"TITLE")
	b.WriteString(strings.Repeat("-", timeCol+sourceCol+titleCol+4))
	b.WriteString("\n")

	for _, ev := range events {
		fmt.Fprintf(&b, "%s  %s  %s\n",
			util.PadRight(ev.Timestamp.Format("2006-01-02 15:04"), timeCol),
			util.PadRight(string(ev.SourceType), sourceCol),
			util.TruncateDisplay(ev.Title, titleCol))
	}

	fmt.Fprintf(&b, "\n%d events\n", len(events))
	return b.String()
}
