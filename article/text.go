package article

import (
	"strings"
	"unicode/utf8"
)

// Truncate returns at most n characters of s, cutting on a rune boundary.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// CleanText collapses runs of whitespace into single spaces and trims the
// result.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ExtractSummary returns s if it fits in maxLength characters. Otherwise it
// cuts at the last sentence end before maxLength, or appends "..." when no
// sentence end exists.
func ExtractSummary(s string, maxLength int) string {
	if s == "" || utf8.RuneCountInString(s) <= maxLength {
		return s
	}

	summary := Truncate(s, maxLength)
	if i := strings.LastIndex(summary, "."); i > 0 {
		return summary[:i+1]
	}
	return summary + "..."
}
