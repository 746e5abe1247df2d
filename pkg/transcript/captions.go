package transcript

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// CaptionExtensions are the sidecar formats Extract understands, in lookup order.
var CaptionExtensions = []string{".vtt", ".srt", ".txt"}

var markupPattern = regexp.MustCompile(`<[^>]*>`)

// ParseCaptions flattens WebVTT, SubRip or plain text captions into running
// text. Headers, cue numbers, timings and inline tags are dropped, and a cue
// line that repeats the previous one is kept once.
func ParseCaptions(raw string) string {
	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		lines   []string
		last    string
		inBlock bool
	)

	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))

		switch {
		case line == "":
			inBlock = false

			continue
		case inBlock:
			continue
		case line == "WEBVTT" || strings.HasPrefix(line, "WEBVTT "):
			continue
		case strings.HasPrefix(line, "NOTE") || line == "STYLE" || line == "REGION":
			inBlock = true

			continue
		case strings.Contains(line, "-->"):
			continue
		case isCueNumber(line):
			continue
		case strings.HasPrefix(line, "Kind:") || strings.HasPrefix(line, "Language:"):
			continue
		}

		text := strings.TrimSpace(markupPattern.ReplaceAllString(line, ""))
		if text == "" || text == last {
			continue
		}

		lines = append(lines, text)
		last = text
	}

	return strings.Join(lines, " ")
}

func isCueNumber(line string) bool {
	_, err := strconv.Atoi(line)

	return err == nil
}
