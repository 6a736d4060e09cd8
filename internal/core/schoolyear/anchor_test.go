package schoolyear

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnchor(t *testing.T) {
	tests := []struct {
		name string
		now  string
		want string
	}{
		{name: "after september 1st", now: "2025-10-03T12:00:00Z", want: "2025-09-01T00:00:00Z"},
		{name: "on september 1st", now: "2025-09-01T00:00:00Z", want: "2025-09-01T00:00:00Z"},
		{name: "before september 1st", now: "2025-08-31T23:59:59Z", want: "2024-09-01T00:00:00Z"},
		{name: "spring semester", now: "2026-03-15T08:00:00Z", want: "2025-09-01T00:00:00Z"},
		{name: "december", now: "2025-12-24T18:00:00Z", want: "2025-09-01T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now, err := time.Parse(time.RFC3339, tt.now)
			require.NoError(t, err)
			want, err := time.Parse(time.RFC3339, tt.want)
			require.NoError(t, err)

			assert.True(t, Anchor(now).Equal(want), "Anchor(%s) = %s, want %s", tt.now, Anchor(now), want)
		})
	}
}

func TestMondayOf(t *testing.T) {
	// 2025-09-01 is a Monday
	monday := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	for offset := 0; offset < 7; offset++ {
		day := monday.AddDate(0, 0, offset).Add(13 * time.Hour)
		assert.True(t, MondayOf(day).Equal(monday), "MondayOf(%s)", day)
	}
}

// Week index and week range must round-trip: every date falls inside the
// range of its own week. Walked over 500 consecutive days to cross the
// school-year boundary and a DST change.
func TestWeekIndexRoundTrip(t *testing.T) {
	base, err := time.Parse(time.RFC3339, "2025-10-03T12:00:00Z")
	require.NoError(t, err)
	anchor := Anchor(base)

	for n := 0; n < 500; n++ {
		date := base.AddDate(0, 0, n)

		index := WeekIndexAt(date, anchor)
		from, to := WeekRange(index, anchor)

		assert.False(t, date.Before(from), "date %s before start of week %d (%s)", date, index, from)
		assert.False(t, date.After(to), "date %s after end of week %d (%s)", date, index, to)
	}
}

func TestWeekIndexMonotonic(t *testing.T) {
	anchor := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	prev := WeekIndex(0)
	for n := 0; n < 400; n++ {
		date := anchor.AddDate(0, 0, n)
		index := WeekIndexAt(date, anchor)
		assert.GreaterOrEqual(t, index, prev, "week index decreased at day %d", n)
		prev = index
	}
}

func TestWeekIndexClampsBeforeAnchor(t *testing.T) {
	anchor := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	before := anchor.AddDate(0, 0, -21)

	assert.Equal(t, WeekIndex(0), WeekIndexAt(before, anchor))
}

func TestWeekRangeZero(t *testing.T) {
	// 2021-09-01 is a Wednesday, so week 0 starts on the preceding Monday
	anchor := time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC)
	from, to := WeekRange(0, anchor)

	assert.Equal(t, time.Date(2021, 8, 30, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2021, 9, 5, 23, 59, 59, 999999999, time.UTC), to)
	assert.Equal(t, WeekIndex(0), WeekIndexAt(anchor, anchor))
}

// The last instant of Sunday still belongs to its own week, sub-second
// timestamps included.
func TestWeekRangeCoversEndOfSunday(t *testing.T) {
	anchor := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	sundayNight := time.Date(2025, 9, 7, 23, 59, 59, 500000000, time.UTC)

	index := WeekIndexAt(sundayNight, anchor)
	from, to := WeekRange(index, anchor)

	assert.False(t, sundayNight.Before(from))
	assert.False(t, sundayNight.After(to))
	// the next week starts exactly where this one ends
	nextFrom, _ := WeekRange(index+1, anchor)
	assert.Equal(t, time.Nanosecond, nextFrom.Sub(to))
}
