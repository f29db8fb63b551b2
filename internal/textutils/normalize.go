// Package textutils provides the text normalization and pattern matching
// helpers shared by the receipt extractors.
package textutils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// \s in RE2 is ASCII only; receipts extracted from PDFs routinely carry
	// no-break and other Unicode spaces.
	reWhitespace  = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)
	reLineEndings = regexp.MustCompile(`\r\n?|[\x{2028}\x{2029}]`)
	reInlineSpace = regexp.MustCompile(`[\t\v\f\r \p{Zs}\x{FEFF}]+`)
	reBlankLines  = regexp.MustCompile(`\n{2,}`)
)

// Normalize collapses every run of whitespace, line breaks included, into a
// single space and trims the result.
func Normalize(raw string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(raw, " "))
}

// NormalizeLines is the line-preserving variant of Normalize: line endings
// become "\n", runs of newlines collapse to one, intra-line whitespace
// collapses to a single space and every line is trimmed.
func NormalizeLines(raw string) string {
	if raw == "" {
		return ""
	}
	s := reLineEndings.ReplaceAllString(raw, "\n")
	s = reInlineSpace.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = strings.Join(lines, "\n")
	s = reBlankLines.ReplaceAllString(s, "\n")
	return strings.Trim(s, "\n")
}

// Preview returns at most n runes of s.
func Preview(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// LastRune returns the final character of the trimmed token, or "" when the
// token is blank.
func LastRune(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	r, _ := utf8.DecodeLastRuneInString(token)
	return string(r)
}
