package aggregator

import (
	"sort"
	"strings"
	"unicode"

	"github.com/penwyp/go-storyteller/internal/core/model"
)

// minTopicWordLen excludes short filler tokens from topic ranking.
const minTopicWordLen = 4

// stopWords excludes grammar words and ubiquitous commit verbs that
// would otherwise crowd every ranking.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "an", "the", "and", "or", "but", "in", "on", "at", "to",
		"for", "of", "with", "by", "from", "is", "are", "was", "were",
		"be", "been", "being", "have", "has", "had", "do", "does", "did",
		"will", "would", "could", "should", "may", "might", "can", "not",
		"it", "its", "this", "that", "these", "those", "as", "if", "so",
		"my", "your", "their", "our", "we", "i", "you", "they", "he",
		"she", "add", "adds", "added", "fix", "fixes", "fixed", "update",
		"updates", "updated", "change", "changes", "changed", "remove",
		"removes", "removed", "refactor", "refactors", "refactored",
		"implement", "implements", "implemented", "use", "uses", "used",
	} {
		stopWords[w] = struct{}{}
	}
}

// rankTopics counts word frequency across every title and summary and
// returns the top-N topics: frequency descending, ties broken by first
// appearance in the scanned text.
func (a *Aggregator) rankTopics(events []model.Event) []model.Topic {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	position := 0

	for _, ev := range events {
		for _, text := range []string{ev.Title, ev.Summary} {
			for _, raw := range strings.Fields(strings.ToLower(text)) {
				word := strings.TrimFunc(raw, func(r rune) bool {
					return !unicode.IsLetter(r) && !unicode.IsDigit(r)
				})
				if len([]rune(word)) < minTopicWordLen {
					continue
				}
				if _, stop := stopWords[word]; stop {
					continue
				}
				if _, seen := firstSeen[word]; !seen {
					firstSeen[word] = position
				}
				counts[word]++
				position++
			}
		}
	}

	topics := make([]model.Topic, 0, len(counts))
	for word, count := range counts {
		topics = append(topics, model.Topic{Word: word, Count: count})
	}

	sort.SliceStable(topics, func(i, j int) bool {
		if topics[i].Count != topics[j].Count {
			return topics[i].Count > topics[j].Count
		}
		return firstSeen[topics[i].Word] < firstSeen[topics[j].Word]
	})

	if len(topics) > a.topicCount {
		topics = topics[:a.topicCount]
	}
	return topics
}
