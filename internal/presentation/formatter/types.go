package formatter

import (
	"github.com/penwyp/go-storyteller/internal/core/model"
)

// ContextFormatter renders a period context into its hand-off form.
// The layout is a presentation concern; every formatter works from the
// same structured data.
type ContextFormatter interface {
	Format(ctx *model.PeriodContext) (string, error)
}

// NewContextFormatter selects a formatter by name.
func NewContextFormatter(format string) ContextFormatter {
	switch format {
	case "json":
		return &JSONFormatter{}
	default:
		return &MarkdownFormatter{}
	}
}
