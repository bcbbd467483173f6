// Package strings holds text helpers for single-line terminal output.
package strings

import (
	"strings"
)

// MaxDetailLen is the longest provider-supplied detail kept in an error message.
const MaxDetailLen = 200

// MinTruncateLen is the smallest useful limit: one character plus "...".
const MinTruncateLen = 4

// SingleLine collapses every run of whitespace, newlines included, into one
// space and cuts the result to maxLen runes, ending in "..." when cut.
// Limits below MinTruncateLen are raised to it.
func SingleLine(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
