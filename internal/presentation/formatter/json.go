package formatter

import (
	"github.com/bytedance/sonic"

	"github.com/penwyp/go-storyteller/internal/core/model"
)

// JSONFormatter renders the period context as indented JSON for
// programmatic consumers.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(ctx *model.PeriodContext) (string, error) {
	data, err := sonic.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
