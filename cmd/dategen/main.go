package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/zapponejosh/seasonal-greetings/internal/calendar"
)

// This tool prints the Gregorian dates on which each Jalali season starts
// in a given year, plus one sample date per season, so folder rotation can
// be checked against a wall calendar.

func main() {
	year := flag.Int("year", time.Now().Year(), "Gregorian year to generate dates for")
	zone := flag.String("tz", "UTC", "IANA time zone the dates are evaluated in")
	flag.Parse()

	loc, err := time.LoadLocation(*zone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid time zone %q: %v\n", *zone, err)
		os.Exit(1)
	}

	fmt.Printf("=== Jalali Season Dates for %d (%s) ===\n\n", *year, loc)

	transitions := seasonTransitions(*year, loc)

	fmt.Println("Season Starts:")
	for _, tr := range transitions {
		fmt.Printf("  %-8s %s  (jalali month %d)\n", tr.season, calendar.FormatDate(tr.date), calendar.JalaliMonth(tr.date))
	}
	fmt.Println()

	fmt.Println("Sample Dates:")
	for _, s := range calendar.Seasons() {
		d, ok := sampleDate(*year, loc, s)
		if !ok {
			fmt.Printf("  %-8s (none in %d)\n", s, *year)
			continue
		}
		fmt.Printf("  %-8s %s\n", s, calendar.FormatDate(d))
	}
}

type transition struct {
	date   time.Time
	season calendar.Season
}

// seasonTransitions walks the year day by day and records every date whose
// season differs from the day before. January 1 always opens the list.
func seasonTransitions(year int, loc *time.Location) []transition {
	var out []transition
	prev := calendar.Unknown

	for d := time.Date(year, time.January, 1, 12, 0, 0, 0, loc); d.Year() == year; d = d.AddDate(0, 0, 1) {
		s := calendar.SeasonAt(d)
		if s != prev {
			out = append(out, transition{date: d, season: s})
			prev = s
		}
	}
	return out
}

// sampleDate returns the 15th day after the season's first date in year.
func sampleDate(year int, loc *time.Location, season calendar.Season) (time.Time, bool) {
	for _, tr := range seasonTransitions(year, loc) {
		if tr.season != season {
			continue
		}
		d := tr.date.AddDate(0, 0, 15)
		if d.Year() == year && calendar.SeasonAt(d) == season {
			return d, true
		}
	}
	return time.Time{}, false
}
