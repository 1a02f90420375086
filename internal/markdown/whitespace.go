package markdown

import (
	"regexp"
	"strings"
)

var (
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

// NormalizeWhitespace strips trailing spaces before newlines, collapses three
// or more newlines into two and trims the result. It is idempotent.
func NormalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = trailingSpace.ReplaceAllString(s, "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
