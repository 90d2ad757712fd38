package cronus

import (
	"fmt"
	"time"
)

// dateLayouts are the accepted input patterns, in priority order: the first
// one that parses the whole string wins.
var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"01-02-2006",
	"02.01.2006",
}

// ParseDate parses a date string against the accepted input patterns.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if at, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return at, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// FormatDate parses a date string and renders it in the locale's long form.
// Unparseable input degrades to the invalid date literal, it never fails.
func FormatDate(s string, l Locale) string {
	at, err := ParseDate(s)
	if err != nil {
		return invalidDate
	}
	return l.FormatDay(at)
}
