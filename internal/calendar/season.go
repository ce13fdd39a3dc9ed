// Package calendar maps dates onto the four Jalali (Solar Hijri) seasons.
package calendar

import (
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

// Season is one of the four fixed season labels.
type Season string

const (
	Spring  Season = "spring"
	Summer  Season = "summer"
	Fall    Season = "fall"
	Winter  Season = "winter"
	Unknown Season = "unknown"
)

// seasonMonths partitions the Jalali months into seasons.
// Order matters: it is the order Seasons reports and lookups walk.
var seasonMonths = []struct {
	season Season
	months [3]int
}{
	{Spring, [3]int{1, 2, 3}},
	{Summer, [3]int{4, 5, 6}},
	{Fall, [3]int{7, 8, 9}},
	{Winter, [3]int{10, 11, 12}},
}

// Seasons returns the known seasons in calendar order.
func Seasons() []Season {
	out := make([]Season, 0, len(seasonMonths))
	for _, sm := range seasonMonths {
		out = append(out, sm.season)
	}
	return out
}

// ParseSeason returns the season named s, or false if s is not a known label.
func ParseSeason(s string) (Season, bool) {
	for _, sm := range seasonMonths {
		if string(sm.season) == s {
			return sm.season, true
		}
	}
	return Unknown, false
}

// IsKnown reports whether s is one of the four labels.
func (s Season) IsKnown() bool {
	_, ok := ParseSeason(string(s))
	return ok
}

// Months returns the Jalali months of s, or nil for Unknown.
func (s Season) Months() []int {
	for _, sm := range seasonMonths {
		if sm.season == s {
			return sm.months[:]
		}
	}
	return nil
}

// SeasonForMonth returns the season containing the Jalali month m.
// Months outside 1-12 yield Unknown.
func SeasonForMonth(m int) Season {
	for _, sm := range seasonMonths {
		for _, month := range sm.months {
			if month == m {
				return sm.season
			}
		}
	}
	return Unknown
}

// JalaliMonth returns the Jalali month (1 = Farvardin ... 12 = Esfand) of t,
// evaluated in t's own location.
func JalaliMonth(t time.Time) int {
	return int(ptime.New(t).Month())
}

// SeasonAt returns the Jalali season of t.
func SeasonAt(t time.Time) Season {
	return SeasonForMonth(JalaliMonth(t))
}
