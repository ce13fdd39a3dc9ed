package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the on-disk format of reset dates.
const DateLayout = "2006-01-02"

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateString parses a YYYY-MM-DD string as midnight in loc.
// A nil loc means UTC.
func ParseDateString(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// DaysSince returns the number of calendar days from since's date to now's
// date, each read in its own location. Time of day and DST shifts do not
// count, so a date stamped earlier today is 0 days old.
func DaysSince(since, now time.Time) int {
	return int(civilDay(now).Sub(civilDay(since)).Hours() / 24)
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
