package output

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/brykly/blogflow/pkg/protocol"
)

const (
	wordsPerMinute = 200
	maxTags        = 5
	minTagLength   = 4
)

var stopWords = map[string]struct{}{
	"about": {}, "after": {}, "also": {}, "because": {}, "been": {}, "before": {}, "being": {},
	"both": {}, "could": {}, "does": {}, "each": {}, "from": {}, "have": {}, "here": {},
	"into": {}, "just": {}, "like": {}, "make": {}, "many": {}, "more": {}, "most": {},
	"much": {}, "only": {}, "other": {}, "over": {}, "really": {}, "same": {}, "should": {},
	"some": {}, "such": {}, "than": {}, "that": {}, "their": {}, "them": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {}, "through": {}, "very": {},
	"want": {}, "were": {}, "what": {}, "when": {}, "where": {}, "which": {}, "while": {},
	"will": {}, "with": {}, "would": {}, "your": {}, "youre": {},
}

// Analyze computes word count, reading time, headings and tags for a
// markdown post. Title is the first heading.
func Analyze(content string) *protocol.PostMetadata {
	meta := &protocol.PostMetadata{
		Headings: []string{},
		Tags:     []string{},
	}

	counts := map[string]int{}
	inFence := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence

			continue
		}

		if inFence {
			continue
		}

		if heading, ok := parseHeading(trimmed); ok {
			meta.Headings = append(meta.Headings, heading)
		}

		for _, word := range strings.FieldsFunc(trimmed, isSeparator) {
			meta.WordCount++

			word = strings.ToLower(strings.ReplaceAll(word, "'", ""))
			if len([]rune(word)) < minTagLength || !hasLetter(word) {
				continue
			}

			if _, stop := stopWords[word]; stop {
				continue
			}

			counts[word]++
		}
	}

	if len(meta.Headings) > 0 {
		meta.Title = meta.Headings[0]
	}

	if meta.WordCount > 0 {
		meta.ReadingTimeMinutes = (meta.WordCount + wordsPerMinute - 1) / wordsPerMinute
	}

	meta.Tags = topWords(counts, maxTags)

	return meta
}

func parseHeading(line string) (string, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}

	if level == 0 || level > 6 || level == len(line) || line[level] != ' ' {
		return "", false
	}

	return strings.TrimSpace(strings.TrimRight(line[level:], "# ")), true
}

func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if heading, ok := parseHeading(strings.TrimSpace(line)); ok {
			return heading
		}
	}

	return ""
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
}

func hasLetter(word string) bool {
	return strings.IndexFunc(word, unicode.IsLetter) >= 0
}

// topWords returns up to n words that occur more than once, most frequent
// first and alphabetical among equals.
func topWords(counts map[string]int, n int) []string {
	words := make([]string, 0, len(counts))

	for word, count := range counts {
		if count > 1 {
			words = append(words, word)
		}
	}

	slices.SortFunc(words, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}

		return strings.Compare(a, b)
	})

	if len(words) > n {
		words = words[:n]
	}

	return words
}
