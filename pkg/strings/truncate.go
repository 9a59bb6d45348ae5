package strings

import (
	"strings"
)

// DefaultColumnMaxLen is the widest a free-text column may grow in pretty tables.
const DefaultColumnMaxLen = 60

// minTruncateLen leaves room for one character plus "...".
const minTruncateLen = 4

// SingleLine collapses all whitespace runs in s to single spaces and cuts the
// result to at most maxLen runes, marking a cut with "...".
//
// A maxLen below 4 is treated as 4. A maxLen of zero or less disables the cut
// and only normalises whitespace.
func SingleLine(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if maxLen <= 0 {
		return s
	}
	if maxLen < minTruncateLen {
		maxLen = minTruncateLen
	}

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
