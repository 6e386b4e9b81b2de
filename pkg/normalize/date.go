package normalize

import (
	"fmt"
	"strings"
	"time"
)

// DateParseError indicates a date string matched none of the known layouts.
type DateParseError struct {
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("unrecognized date format %q", e.Value)
}

// Statement date layouts seen across issuers. Day-first variants come
// before year-first because Indian bank statements are day-first.
var dateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"2006-01-02",
	"2006/01/02",
	"02/01/06",
	"2 Jan 2006",
	"2 Jan 06",
	"2 Jan, 2006",
	"2 January 2006",
	"2 January, 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
}

// ParseDate canonicalizes the date representations found on statements.
func ParseDate(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, &DateParseError{Value: s}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &DateParseError{Value: s}
}
