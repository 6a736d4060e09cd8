// Package formatter renders weekly absence statistics for the terminal:
// a box-drawn table, a summary report, json and csv.
package formatter

import (
	"sort"
	"time"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/absence"
	"github.com/kreta-tools/go-kreta-bridge/internal/core/schoolyear"
)

// WeekRow is one school week's worth of classified absence statistics
type WeekRow struct {
	Week    schoolyear.WeekIndex
	Monday  time.Time
	Sunday  time.Time
	Buckets map[absence.Category]absence.Stats
}

// BuildWeekRows flattens a weekly aggregate map into rows sorted by week
// index, resolving each index back to its calendar span.
func BuildWeekRows(weekly map[schoolyear.WeekIndex]map[absence.Category]absence.Stats, anchor time.Time) []WeekRow {
	rows := make([]WeekRow, 0, len(weekly))
	for week, buckets := range weekly {
		monday, sunday := schoolyear.WeekRange(week, anchor)
		rows = append(rows, WeekRow{
			Week:    week,
			Monday:  monday,
			Sunday:  sunday,
			Buckets: buckets,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Week < rows[j].Week })
	return rows
}

// HoursOfKind sums the row's hours over every category of the given kind
func (r *WeekRow) HoursOfKind(kind absence.CategoryKind) float64 {
	hours, _ := absence.HoursOfKind(r.Buckets, kind)
	return hours
}

// TotalHours sums the row's hours over all categories
func (r *WeekRow) TotalHours() float64 {
	total := 0.0
	for _, stats := range r.Buckets {
		total += stats.Hours
	}
	return total
}

// TotalCount sums the row's record counts over all categories
func (r *WeekRow) TotalCount() int {
	return absence.TotalCount(r.Buckets)
}
