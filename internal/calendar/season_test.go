package calendar

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonForMonth_CoversEveryMonth(t *testing.T) {
	counts := map[Season]int{}
	for m := 1; m <= 12; m++ {
		s := SeasonForMonth(m)
		require.True(t, s.IsKnown(), "month %d resolved to %q", m, s)
		counts[s]++
	}
	for _, s := range Seasons() {
		assert.Equal(t, 3, counts[s], "season %s", s)
	}
}

func TestSeasonForMonth_Partition(t *testing.T) {
	tests := []struct {
		month int
		want  Season
	}{
		{1, Spring}, {3, Spring},
		{4, Summer}, {6, Summer},
		{7, Fall}, {9, Fall},
		{10, Winter}, {12, Winter},
		{0, Unknown}, {13, Unknown}, {-1, Unknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SeasonForMonth(tt.month), "month %d", tt.month)
	}
}

func TestSeasonAt(t *testing.T) {
	tests := []struct {
		date      time.Time
		wantMonth int
		want      Season
	}{
		// 26 Farvardin 1404
		{time.Date(2025, time.April, 15, 12, 0, 0, 0, time.UTC), 1, Spring},
		// 24 Tir 1404
		{time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC), 4, Summer},
		// 23 Mehr 1404
		{time.Date(2025, time.October, 15, 12, 0, 0, 0, time.UTC), 7, Fall},
		// 25 Dey 1404
		{time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC), 10, Winter},
		// 19 Esfand 1404, still winter before Nowruz
		{time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC), 12, Winter},
	}
	for _, tt := range tests {
		t.Run(FormatDate(tt.date), func(t *testing.T) {
			assert.Equal(t, tt.wantMonth, JalaliMonth(tt.date))
			assert.Equal(t, tt.want, SeasonAt(tt.date))
		})
	}
}

func TestParseSeason(t *testing.T) {
	s, ok := ParseSeason("fall")
	assert.True(t, ok)
	assert.Equal(t, Fall, s)

	_, ok = ParseSeason("autumn")
	assert.False(t, ok)

	_, ok = ParseSeason("unknown")
	assert.False(t, ok)
}

func TestSeasonMonths(t *testing.T) {
	assert.Equal(t, []int{4, 5, 6}, Summer.Months())
	assert.Nil(t, Unknown.Months())
}

func TestDaysSince(t *testing.T) {
	reset, err := ParseDateString("2025-01-01", time.UTC)
	require.NoError(t, err)

	assert.Equal(t, 0, DaysSince(reset, reset.Add(23*time.Hour)))
	assert.Equal(t, 44, DaysSince(reset, time.Date(2025, time.February, 14, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, 45, DaysSince(reset, time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC)))

	_, err = ParseDateString("01/02/2025", time.UTC)
	assert.Error(t, err)
}

func TestDaysSince_AcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Clocks spring forward on 2025-03-09, so only 44 days and 23.5 hours
	// of wall time separate these two moments.
	reset, err := ParseDateString("2025-02-01", ny)
	require.NoError(t, err)
	now := time.Date(2025, time.March, 18, 0, 30, 0, 0, ny)
	assert.Equal(t, 45, DaysSince(reset, now))

	// Falling back adds an hour but still counts as one day.
	reset, err = ParseDateString("2025-11-01", ny)
	require.NoError(t, err)
	assert.Equal(t, 1, DaysSince(reset, time.Date(2025, time.November, 2, 23, 59, 0, 0, ny)))
	assert.Error(t, err)
}
