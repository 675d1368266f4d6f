package util

import (
	"strings"
	"time"
)

// dateLayouts are tried in order; month-only layouts resolve to the first day.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006/01/02",
	"2006/01",
	"2006-1-2",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006.01.02",
	"20060102",
	"2-Jan-2006",
	"02-Jan-2006",
	"Jan 2006",
	"January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseDate parses common calendar-date representations and returns the
// calendar day at UTC midnight. Returns (t, true) if any layout worked.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// MonthStart returns the first day of the given month at UTC midnight.
func MonthStart(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}
