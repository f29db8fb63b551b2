// Package currencyutils parses and formats the amounts printed on payment receipts.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency all camp fees are paid in.
const DefaultCurrency = "ETB"

var currencyRe = regexp.MustCompile(`(?i)(ETB|Birr|USD|EUR|CHF|ብር)|[€$£¥\s']`)

// ParseAmount parses a string representation of an amount into a decimal value.
// It handles formats like "ETB1000.00", "1,234.56", "1.234,56", "1234,56" and "1 234.56".
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	if strings.TrimSpace(amountStr) == "" {
		return decimal.Zero, nil
	}

	standardized := StandardizeAmount(amountStr)

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}

	return amount, nil
}

// StandardizeAmount converts receipt amount strings to a form decimal.NewFromString accepts.
func StandardizeAmount(amountStr string) string {
	amountStr = currencyRe.ReplaceAllString(amountStr, "")

	hasComma := strings.Contains(amountStr, ",")
	hasDot := strings.Contains(amountStr, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(amountStr, ".") < strings.LastIndex(amountStr, ",") {
			// 1.234,56
			amountStr = strings.ReplaceAll(amountStr, ".", "")
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			// 1,234.56
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	case hasComma:
		parts := strings.Split(amountStr, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			amountStr = strings.Replace(amountStr, ",", ".", 1)
		} else {
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	case strings.Count(amountStr, ".") > 1:
		// 1.234.567 with dots as thousands separators
		parts := strings.Split(amountStr, ".")
		allGroups := true
		for _, p := range parts[1:] {
			if len(p) != 3 {
				allGroups = false
			}
		}
		if allGroups {
			amountStr = strings.ReplaceAll(amountStr, ".", "")
		}
	}

	return amountStr
}

// FormatAmount formats an amount with two decimals and the currency code as
// receipts print it, e.g. "ETB1000.00".
func FormatAmount(amount decimal.Decimal, currency string) string {
	formatted := amount.StringFixed(2)
	if currency == "" {
		return formatted
	}
	return strings.ToUpper(currency) + formatted
}

// IsPositive checks if an amount is positive
func IsPositive(amount decimal.Decimal) bool {
	return amount.GreaterThan(decimal.Zero)
}
