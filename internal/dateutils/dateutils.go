// Package dateutils parses the dates printed on payment receipts.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts found on receipts. Numeric dates are day first.
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutSlash     = "2/1/2006"
	DateLayoutDash      = "2-1-2006"
	DateLayoutDot       = "2.1.2006"
	DateLayoutSlashYY   = "2/1/06"
	DateLayoutDashYY    = "2-1-06"
	DateLayoutDotYY     = "2.1.06"
	DateLayoutWeekday   = "Mon Jan 2 2006"
	DateLayoutTimestamp = time.RFC3339
)

// ReceiptFormats is the list of formats tried, in order, when parsing a
// receipt date.
var ReceiptFormats = []string{
	DateLayoutSlash,
	DateLayoutDash,
	DateLayoutDot,
	DateLayoutSlashYY,
	DateLayoutDashYY,
	DateLayoutDotYY,
	DateLayoutWeekday,
	DateLayoutISO,
	DateLayoutTimestamp,
}

var spaceRe = regexp.MustCompile(`\s+`)

// ParseDate attempts to parse a date string using the receipt formats.
// Returns the parsed time and the detected layout.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)
	if dateStr == "" {
		return time.Time{}, "", fmt.Errorf("unable to parse date: empty string")
	}

	for _, layout := range ReceiptFormats {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, layout, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// NormalizeDate converts a receipt date to ISO form. Unparseable input is
// returned unchanged with ok=false so callers can keep the original text.
func NormalizeDate(dateStr string) (string, bool) {
	t, _, err := ParseDate(dateStr)
	if err != nil {
		return dateStr, false
	}
	return ToISODate(t), true
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// Timestamp formats t the way stored records carry it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(DateLayoutTimestamp)
}

// CleanDateString trims and collapses whitespace.
func CleanDateString(dateStr string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}
