package normalize

import (
	"regexp"
	"strings"
)

var (
	spaceRun      = regexp.MustCompile(`\s+`)
	storeSuffixes = regexp.MustCompile(`\s+(?:#?\d+|\*\w+)$`)
)

// Merchant reduces a raw description or payee to the key used by the
// exact-merchant mapping: uppercased, whitespace collapsed, trailing store
// numbers stripped ("STARBUCKS #4521" and "STARBUCKS 4521" both key as
// "STARBUCKS").
func Merchant(s string) string {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = spaceRun.ReplaceAllString(v, " ")
	for {
		stripped := storeSuffixes.ReplaceAllString(v, "")
		if stripped == v {
			break
		}
		v = stripped
	}
	return v
}
