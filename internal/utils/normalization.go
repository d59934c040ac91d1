package utils

import (
	"strings"
	"unicode/utf8"
)

// Truncate shortens s to at most max runes for log fields.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
