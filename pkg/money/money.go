package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice converts a display-formatted price string ("₹45.50", "Rs 1,299.00")
// into a decimal amount. Every rune that is not a digit or decimal point is
// stripped before parsing. Malformed input yields zero so a bad price string
// contributes nothing to a subtotal instead of poisoning it.
func ParsePrice(display string) decimal.Decimal {
	var b strings.Builder
	for _, r := range display {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return value
}

// Format renders an amount with the given currency symbol and two decimals.
func Format(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixed(2)
}
