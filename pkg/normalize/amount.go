package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountParseError indicates an amount string could not be read. Amounts
// are never silently coerced to zero.
type AmountParseError struct {
	Value string
}

func (e *AmountParseError) Error() string {
	return fmt.Sprintf("unrecognized amount format %q", e.Value)
}

var currencySymbols = map[string]string{
	"₹": "INR",
	"£": "GBP",
	"$": "USD",
	"€": "EUR",
}

// ParseAmount reads an amount string as printed on a statement and returns
// a signed decimal plus the currency code implied by a symbol, if any.
// Handled conventions: thousands separators, parenthesized negatives,
// leading sign, currency symbols, trailing Cr/Dr indicators.
func ParseAmount(s string) (decimal.Decimal, string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return decimal.Zero, "", &AmountParseError{Value: s}
	}

	negative := false
	if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		negative = true
		v = strings.TrimSpace(v[1 : len(v)-1])
	}

	upper := strings.ToUpper(v)
	credit := false
	switch {
	case strings.HasSuffix(upper, "CR"):
		credit = true
		v = strings.TrimSpace(v[:len(v)-2])
	case strings.HasSuffix(upper, "DR"):
		negative = true
		v = strings.TrimSpace(v[:len(v)-2])
	}

	currency := ""
	for sym, code := range currencySymbols {
		if strings.Contains(v, sym) {
			currency = code
			v = strings.ReplaceAll(v, sym, "")
			break
		}
	}

	v = strings.ReplaceAll(v, ",", "")
	v = strings.ReplaceAll(v, " ", "")
	v = strings.TrimSpace(v)
	if v == "" {
		return decimal.Zero, "", &AmountParseError{Value: s}
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, "", &AmountParseError{Value: s}
	}

	if negative && d.IsPositive() {
		d = d.Neg()
	}
	if credit && d.IsNegative() {
		d = d.Abs()
	}
	return d, currency, nil
}
