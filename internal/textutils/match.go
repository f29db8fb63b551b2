package textutils

import (
	"regexp"
	"strings"
)

// FirstMatch evaluates patterns in order and returns the trimmed first
// capture group of the first pattern whose group is non-blank, together
// with that pattern's index. Later patterns are never consulted once one
// succeeds.
func FirstMatch(text string, patterns []*regexp.Regexp) (string, int, bool) {
	for i, re := range patterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if v := strings.TrimSpace(m[1]); v != "" {
			return v, i, true
		}
	}
	return "", -1, false
}

// ContainsWord reports whether word occurs in text as a whole token bounded
// by whitespace or the ends of the string. The comparison is case-sensitive.
func ContainsWord(text, word string) bool {
	if word == "" {
		return false
	}
	for _, field := range strings.Fields(text) {
		if field == word {
			return true
		}
	}
	return false
}
