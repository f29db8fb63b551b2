package receipt

import (
	"regexp"
	"strings"

	"fjacquet/camp-registration/internal/textutils"
)

// Rule is one pattern for a field. The pattern's first capture group is the
// value; Format, when set, rewrites it. Reject, when set, discards a
// capture so the next rule in the set is tried.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Format  func(string) string
	Reject  func(string) bool
}

// RuleSet is an ordered list of rules. Order is priority: the first rule
// that matches wins and later rules are fallbacks for rarer layouts.
type RuleSet []Rule

func (rs RuleSet) patterns() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(rs))
	for i, r := range rs {
		out[i] = r.Pattern
	}
	return out
}

// Apply runs the rule set against already normalized text.
func (rs RuleSet) Apply(text string) Value {
	patterns := rs.patterns()
	for start := 0; start < len(rs); {
		v, idx, ok := textutils.FirstMatch(text, patterns[start:])
		if !ok {
			break
		}
		rule := rs[start+idx]
		if rule.Reject != nil && rule.Reject(v) {
			start += idx + 1
			continue
		}
		if rule.Format != nil {
			v = rule.Format(v)
		}
		return Value{Text: v, Rule: rule.Name, Found: true}
	}
	return Value{}
}

// Value is the outcome of extracting one field. Found is false when no
// rule matched; that is an expected outcome, not an error.
type Value struct {
	Text  string
	Rule  string
	Found bool
}

// Ptr returns the value as an optional string.
func (v Value) Ptr() *string {
	if !v.Found {
		return nil
	}
	s := v.Text
	return &s
}

// Shared pattern fragments.
const (
	// amountEnd stops a labeled amount from matching a prefix of a longer
	// number, e.g. "100" out of "1000.00".
	amountEnd   = `(?:[^0-9.,]|[.,](?:[^0-9]|$)|$)`
	numericDate = `[0-9]{1,2}[/\-.][0-9]{1,2}[/\-.][0-9]{2,4}`
	weekdays    = `(?:Mon|Tue|Wed|Thu|Fri|Sat|Sun)`
	months      = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`
)

func rule(name, pattern string) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile(pattern)}
}

func etbPrefixed(v string) string { return "ETB" + v }

// accountLabel rejects a sender name that is really the "Account" label of
// a "From Account <digits>" line.
func accountLabel(v string) bool {
	return strings.HasPrefix(strings.ToLower(v), "account")
}

// DefaultRules is the single rule table used by every entry point.
var DefaultRules = map[Field]RuleSet{
	TransactionID: {
		rule("transaction", `(?i)Transaction\s*[#:]?\s*([A-Z0-9]{8,})`),
		rule("ref", `(?i)Ref\.?\s*[#:]?\s*([A-Z0-9]{8,})`),
		rule("receipt-no", `(?i)Receipt\s*No\.?\s*[#:]?\s*([A-Z0-9]{8,})`),
	},
	Amount: {
		rule("labeled-comma-thousands", `(?i)(?:Amount|Amt|Total)\s*[#:]?\s*([0-9]{1,3}(?:,[0-9]{3})*(?:\.[0-9]{2})?)`+amountEnd),
		rule("labeled-dot-thousands", `(?i)(?:Amount|Amt|Total)\s*[#:]?\s*([0-9]+(?:\.[0-9]{3})*(?:,[0-9]{2})?)`+amountEnd),
		rule("labeled-plain", `(?i)(?:Amount|Amt|Total)\s*[#:]?\s*([0-9]+(?:\.[0-9]{2})?)`+amountEnd),
		{Name: "etb-prefixed", Pattern: regexp.MustCompile(`(?i)ETB([0-9]+\.[0-9]{2})`), Format: etbPrefixed},
	},
	CurrencyAmount: {
		{Name: "etb-prefixed", Pattern: regexp.MustCompile(`(?i)ETB([0-9]+\.[0-9]{2})`), Format: etbPrefixed},
	},
	Date: {
		rule("labeled-numeric", `(?i)Date\s*[#:]?\s*(`+numericDate+`)`),
		rule("numeric", `(?i)(`+numericDate+`)`),
	},
	PaymentDate: {
		rule("payment-date-text", `(?i)Payment Date\s*(`+weekdays+`\s*`+months+`\s*[0-9]{1,2}\s*[0-9]{4})`),
	},
	SenderAccount: {
		rule("from-account", `(?i)From\s*Account\s*[#:]?\s*([0-9X*]{10,})`),
		rule("account-no", `(?i)Account\s*No\.?\s*[#:]?\s*([0-9X*]{10,})`),
		rule("from-loose", `(?i)\bFrom\s*:?\s*[0-9X*\s]*([0-9X*]{4,})`),
	},
	ReceiverAccount: {
		rule("to-account", `(?i)To\s*Account\s*[#:]?\s*([0-9X*]{10,})`),
		rule("beneficiary-account", `(?i)Beneficiary\s*Account\s*[#:]?\s*([0-9X*]{10,})`),
		rule("to-loose", `(?i)\bTo\s*:?\s*[0-9X*\s]*([0-9X*]{4,})`),
	},
	SenderName: {
		{Name: "from", Pattern: regexp.MustCompile(`(?i)From\s*:?\s*([A-Za-z\s.]+?)(?:\s*Account|\s*[0-9]|$)`), Reject: accountLabel},
		rule("customer-name", `(?i)Customer\s*Name\s*[#:]?\s*([A-Za-z\s.]+?)(?:\s*[0-9]|$)`),
		rule("payer", `(?i)Payer\s*:?\s*([A-Za-z\s.]+?)(?:\s*[0-9]|$)`),
	},
	ReferenceNumber: {
		rule("reference-no", `(?i)Reference No\.\s*([A-Z0-9]+)`),
	},
	PayerAccountDigit: {
		// First digit/mask run after "Payer" that is not followed by a word,
		// which skips amounts like "100 ETB" and names.
		{Name: "payer-last-digit", Pattern: regexp.MustCompile(`(?i)Payer.*?([0-9*]+)(?:\s*[^\w\s]|\s*$)`), Format: textutils.LastRune},
	},
	ReceiverAccountDigit: {
		{Name: "receiver-last-digit", Pattern: regexp.MustCompile(`(?i)Receiver.*?([A-Z0-9*]+)`), Format: textutils.LastRune},
	},
}
