package models

import (
	"fmt"
	"time"
)

// DateFormat is the ISO calendar date layout used on every external surface.
const DateFormat = "2006-01-02"

// DateOnly truncates t to midnight UTC of its calendar day.
// Dates built this way are comparable with == and usable as map keys.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want format %s", s, DateFormat)
	}
	return t, nil
}

// EndOfYear returns December 31st of the given year.
func EndOfYear(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}
