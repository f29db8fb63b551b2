package receipt

import (
	"strings"

	"fjacquet/camp-registration/internal/textutils"
)

// Provider keywords.
const (
	ProviderTelebirr = "Telebirr"
	ProviderCBE      = "cbe"
)

// ContainsProviderWord reports whether word appears in text as a standalone,
// case-sensitive token bounded by whitespace or the ends of the text.
func ContainsProviderWord(text, word string) bool {
	return textutils.ContainsWord(textutils.Normalize(text), word)
}

// IsTelebirrText reports whether text contains the exact word "Telebirr".
// "telebirr" and "Telebirr-like" do not count.
func IsTelebirrText(text string) bool {
	return ContainsProviderWord(text, ProviderTelebirr)
}

// FilenameHasToken reports whether the lower-cased filename contains the
// lower-cased token.
func FilenameHasToken(filename, token string) bool {
	if filename == "" || token == "" {
		return false
	}
	return strings.Contains(strings.ToLower(filename), strings.ToLower(token))
}

// ClassifyInput carries whatever is known about a receipt.
type ClassifyInput struct {
	Text     string
	Filename string
}

// Classify decides whether a receipt belongs to the provider identified by
// keyword. Content wins when there is any: the exact-word rule is applied to
// the text. Without text the filename substring rule is used. The two rules
// are alternatives for different flows and are never combined.
func Classify(in ClassifyInput, keyword string) bool {
	if keyword == "" {
		return false
	}
	if text := textutils.Normalize(in.Text); text != "" {
		return textutils.ContainsWord(text, keyword)
	}
	return FilenameHasToken(in.Filename, keyword)
}
