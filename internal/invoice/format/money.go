// Package format renders monetary values for display on the invoice.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol returns the display prefix for a currency label. USD keeps
// the bare dollar sign; everything else is prefixed with its code.
func CurrencySymbol(currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" || code == "USD" {
		return "$"
	}
	return code + " "
}

// Money formats a decimal amount with the currency prefix, two fractional
// digits and thousands grouping, e.g. "$1,234.50".
//
// Rounding happens here and only here, using round-half-to-even so repeated
// formatting of intermediate values cannot compound.
func Money(value decimal.Decimal, symbol string) string {
	fixed := value.StringFixedBank(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	out := symbol + groupThousands(intPart) + "." + fracPart
	if negative {
		return "-" + out
	}
	return out
}

// Percent formats a tax rate without trailing zeros, e.g. "7" or "7.5".
func Percent(rate decimal.Decimal) string {
	return rate.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
