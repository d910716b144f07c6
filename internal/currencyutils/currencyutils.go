// Package currencyutils provides common currency and decimal operations used
// throughout the application.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var symbolPattern = regexp.MustCompile(`[€$£¥₣₤₧₹₺₽₩฿₫₲₴₸₼₪\s]`)

// ParseAmount parses a string representation of an amount into a decimal value.
// It handles various formats like "1,234.56", "1.234,56", "1234.56", "1234,56".
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	if strings.TrimSpace(amountStr) == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	standardized := StandardizeAmount(amountStr)

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}

	return amount, nil
}

// StandardizeAmount converts various currency string formats to a standard
// format that can be parsed by decimal.NewFromString. Handles patterns like
// "1'234.56", "€1.234,56", "$1,234.56", "1 234,56", etc.
func StandardizeAmount(amountStr string) string {
	amountStr = symbolPattern.ReplaceAllString(amountStr, "")

	// Handle European format (1.234,56) -> (1234.56)
	if strings.Contains(amountStr, ",") && strings.Contains(amountStr, ".") {
		if strings.LastIndex(amountStr, ".") < strings.LastIndex(amountStr, ",") {
			amountStr = strings.ReplaceAll(amountStr, ".", "")
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	} else if strings.Contains(amountStr, ",") {
		// Comma only: decimal separator (1234,56) or thousand separator (1,234)
		parts := strings.Split(amountStr, ",")
		if len(parts) > 1 && len(parts[len(parts)-1]) <= 2 {
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	}

	// Apostrophes used as thousand separators (1'234.56)
	amountStr = strings.ReplaceAll(amountStr, "'", "")

	return amountStr
}

// NormalizeCurrencyCode uppercases and trims a currency code, substituting
// the given default when the code is absent.
func NormalizeCurrencyCode(code, defaultCode string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return defaultCode
	}
	return code
}
