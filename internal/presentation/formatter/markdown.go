package formatter

import (
	"fmt"
	"strings"

	"github.com/penwyp/go-storyteller/internal/core/model"
	"github.com/penwyp/go-storyteller/internal/core/timeline"
)

// excerptLen bounds inline summary excerpts in rendered documents.
const excerptLen = 200

// MarkdownFormatter renders the period context as the markdown
// document handed to the external narrative agent: window, per-source
// summary, per-day event listings, per-repository commits, and the
// ranked topic list.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(ctx *model.PeriodContext) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# Activity Context: %s — %s\n\n", ctx.Period, ctx.DateRange)

	b.WriteString("## Source Summary\n\n")
	if ctx.TotalEvents == 0 {
		b.WriteString("_No events recorded for this period._\n\n")
	} else {
		for _, st := range model.AllSourceTypes {
			if count := ctx.SourceCount[st]; count > 0 {
				fmt.Fprintf(&b, "- %s: %d events\n", st, count)
			}
		}
		b.WriteString("\n")
	}

	f.writeEvents(&b, ctx)
	f.writeCommits(&b, ctx)
	f.writeTopics(&b, ctx)

	return b.String(), nil
}

func (f *MarkdownFormatter) writeEvents(b *strings.Builder, ctx *model.PeriodContext) {
	b.WriteString("## Events\n\n")

	var all []model.Event
	for _, st := range model.AllSourceTypes {
		if st == model.SourceGithub {
			continue // commits get their own per-repository section
		}
		all = append(all, ctx.BySource[st]...)
	}
	if len(all) == 0 {
		b.WriteString("_No events._\n\n")
		return
	}

	groups := timeline.GroupByDay(all)
	for _, day := range timeline.SortedKeys(groups) {
		fmt.Fprintf(b, "### %s\n\n", day)
		events := timeline.Query(groups[day], timeline.Filter{})
		for _, ev := range events {
			fmt.Fprintf(b, "- **%s** [%s] %s\n", ev.Timestamp.Format("15:04"), ev.SourceType, ev.Title)
			if excerpt := flatten(ev.Summary); excerpt != "" {
				fmt.Fprintf(b, "  > %s\n", excerpt)
			}
		}
		b.WriteString("\n")
	}
}

func (f *MarkdownFormatter) writeCommits(b *strings.Builder, ctx *model.PeriodContext) {
	b.WriteString("## Commits\n\n")

	if len(ctx.Repos) == 0 {
		b.WriteString("_No commits recorded for this period._\n\n")
		return
	}

	for _, repo := range ctx.Repos {
		fmt.Fprintf(b, "### %s\n\n", repo.Repo)
		for _, commit := range repo.Commits {
			sha := commit.Metadata["commit"]
			if len(sha) > 7 {
				sha = sha[:7]
			}
			if sha == "" {
				sha = "·"
			}
			fmt.Fprintf(b, "- `%s` %s\n", sha, commit.Title)
		}
		b.WriteString("\n")
	}
}

func (f *MarkdownFormatter) writeTopics(b *strings.Builder, ctx *model.PeriodContext) {
	b.WriteString("## Topics\n\n")

	if len(ctx.Topics) == 0 {
		b.WriteString("_No topics extracted._\n")
		return
	}

	words := make([]string, 0, len(ctx.Topics))
	for _, topic := range ctx.Topics {
		words = append(words, topic.Word)
	}
	b.WriteString(strings.Join(words, ", "))
	b.WriteString("\n")
}

// flatten collapses a summary to a single bounded line.
func flatten(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) > excerptLen {
		s = string([]rune(s)[:excerptLen]) + "..."
	}
	return s
}
