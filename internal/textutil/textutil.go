package textutil

import "strings"

// Truncate shortens a string to maxLen, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// StripBrackets removes a single surrounding [ ] pair, returning the inner
// text and whether the string was bracketed. Wowhead wraps unverified NPC
// names in square brackets.
func StripBrackets(s string) (string, bool) {
	if len(s) >= 2 && strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		return s[1 : len(s)-1], true
	}
	return s, false
}
