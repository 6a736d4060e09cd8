// Package schoolyear anchors week numbering on the start of the school year.
// Week 0 is the Monday-Sunday span containing September 1st; every date on or
// after the anchor maps to a non-negative week index.
package schoolyear

import (
	"math"
	"time"

	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// WeekIndex is the number of whole weeks between a date's Monday and the
// anchor's Monday. Out-of-range values are clamped, never returned as errors.
type WeekIndex uint32

// Anchor returns midnight of the most recent September 1st at or before now,
// in now's location. Before September 1st the previous year's anchor applies.
func Anchor(now time.Time) time.Time {
	year := now.Year()
	if now.Month() < time.September {
		year--
	}
	return time.Date(year, time.September, 1, 0, 0, 0, 0, now.Location())
}

// MondayOf aligns a time down to midnight of the Monday of its week
func MondayOf(t time.Time) time.Time {
	daysFromMonday := (int(t.Weekday()) + 6) % 7
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -daysFromMonday)
}

// WeekIndexAt computes the Monday-aligned week offset of date from anchor.
// Dates before the anchor clamp to 0 with a logged warning; this is a
// degraded-mode policy so a stray out-of-year record cannot abort a whole
// bucketing pass.
func WeekIndexAt(date, anchor time.Time) WeekIndex {
	dateMonday := MondayOf(date)
	anchorMonday := MondayOf(anchor)

	diffDays := int64(dateMonday.Sub(anchorMonday).Hours() / 24)
	diffWeeks := diffDays / 7

	if diffWeeks < 0 {
		util.LogWarnf("week index for %s is %d weeks before the anchor %s, clamping to 0",
			date.Format(util.ISODate), -diffWeeks, anchor.Format(util.ISODate))
		return 0
	}
	if diffWeeks > math.MaxUint32 {
		util.LogWarnf("week index %d for %s overflows, clamping", diffWeeks, date.Format(util.ISODate))
		return math.MaxUint32
	}
	return WeekIndex(diffWeeks)
}

// WeekRange is the inverse of WeekIndexAt: the Monday midnight and Sunday
// end-of-day of the given week relative to the anchor's Monday. For every
// non-clamped date d, d lies within WeekRange(WeekIndexAt(d, a), a) inclusive.
func WeekRange(index WeekIndex, anchor time.Time) (time.Time, time.Time) {
	anchorMonday := MondayOf(anchor)

	monday := anchorMonday.AddDate(0, 0, int(index)*7)
	sundayEnd := monday.AddDate(0, 0, 7).Add(-time.Nanosecond)

	return monday, sundayEnd
}
