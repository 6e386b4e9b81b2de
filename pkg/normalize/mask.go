package normalize

import (
	"regexp"
	"strings"
)

// Runs of 12-19 digits, optionally broken by spaces or dashes, are treated
// as card numbers.
var cardRunPattern = regexp.MustCompile(`\d(?:[\d\- ]{10,20})\d`)

// MaskText irreversibly masks every card-number-like digit run in s down
// to its last 4 digits. Applied directly on parser output so full numbers
// never reach logs or storage.
func MaskText(s string) string {
	return cardRunPattern.ReplaceAllStringFunc(s, func(run string) string {
		digits := onlyDigits(run)
		if len(digits) < 12 || len(digits) > 19 {
			return run
		}
		return strings.Repeat("X", len(digits)-4) + digits[len(digits)-4:]
	})
}

// CardLast4 extracts the last 4 digits of a card identifier in any of the
// shapes parsers produce ("6528XXXXXXXX1005", "4521", "1234 5678 9012 3456").
func CardLast4(s string) string {
	digits := onlyDigits(s)
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
