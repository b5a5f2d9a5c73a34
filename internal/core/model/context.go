package model

// Period is a reporting window granularity.
type Period string

const (
	PeriodDay  Period = "day"
	PeriodWeek Period = "week"
)

// ParsePeriod converts a string to a Period, rejecting unknown values.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDay:
		return PeriodDay, nil
	case PeriodWeek:
		return PeriodWeek, nil
	}
	return "", &InvalidPeriodError{Value: s}
}

// InvalidPeriodError reports an unrecognized period string.
type InvalidPeriodError struct {
	Value string
}

func (e *InvalidPeriodError) Error() string {
	return "invalid period: " + e.Value + " (expected day or week)"
}

// Topic is one entry of the ranked topic list, carrying the word and
// its occurrence count across titles and summaries.
type Topic struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// RepoActivity groups the commits of one repository inside a period.
type RepoActivity struct {
	Repo    string  `json:"repo"`
	Commits []Event `json:"commits"`
}

// PeriodContext is the structured hand-off artifact consumed by the
// external narrative-generation step. It carries data, never prose.
type PeriodContext struct {
	Period      Period                 `json:"period"`
	WindowStart Timestamp              `json:"window_start"`
	WindowEnd   Timestamp              `json:"window_end"` // exclusive
	DateRange   string                 `json:"date_range"`
	TotalEvents int                    `json:"total_events"`
	SourceCount map[SourceType]int     `json:"source_count"`
	BySource    map[SourceType][]Event `json:"by_source"`
	Repos       []RepoActivity         `json:"repos"`
	Topics      []Topic                `json:"topics"`
}
