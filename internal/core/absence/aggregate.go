package absence

import (
	"fmt"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/model"
	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// A school lesson is 45 minutes, so late-minutes convert to lesson-hours by
// dividing with this. A record with no late-minutes counts as one full hour.
const (
	lessonMinutes     = 45.0
	nominalRecordHour = 1.0
)

// Stats accumulates the occurrence count and lesson-hour total of a category
type Stats struct {
	Count int
	Hours float64
}

func (s *Stats) add(rec *model.Absence) {
	s.Count++
	if rec.LateMinutes != nil {
		s.Hours += float64(*rec.LateMinutes) / lessonMinutes
	} else {
		s.Hours += nominalRecordHour
	}
}

// Aggregate classifies every record and accumulates count and hours per
// category. A record that fails classification is logged and excluded; one
// malformed record never aborts the rest.
func Aggregate(records []model.Absence) map[Category]Stats {
	result := make(map[Category]Stats)

	for i := range records {
		category, err := Classify(&records[i])
		if err != nil {
			util.LogWarnf("skipping record in aggregation: %v", err)
			continue
		}

		stats := result[category]
		stats.add(&records[i])
		result[category] = stats
	}

	return result
}

// AggregateWithUnclassified is Aggregate for callers that want failure
// visibility: records that fail classification are accumulated under the
// unclassified category instead of being dropped.
func AggregateWithUnclassified(records []model.Absence) map[Category]Stats {
	result := make(map[Category]Stats)

	for i := range records {
		category, err := Classify(&records[i])
		if err != nil {
			util.LogWarnf("bucketing record as unclassified: %v", err)
			category = Category{Kind: KindUnclassified}
		}

		stats := result[category]
		stats.add(&records[i])
		result[category] = stats
	}

	return result
}

// HoursOfKind sums the accumulated hours of every category with the given
// kind. Excused absences spread over several descriptions, so a plain map
// lookup is not enough.
func HoursOfKind(aggregates map[Category]Stats, kind CategoryKind) (float64, bool) {
	var hours float64
	found := false
	for category, stats := range aggregates {
		if category.Kind == kind {
			hours += stats.Hours
			found = true
		}
	}
	return hours, found
}

// TotalCount sums occurrence counts over all categories
func TotalCount(aggregates map[Category]Stats) int {
	total := 0
	for _, stats := range aggregates {
		total += stats.Count
	}
	return total
}

// Describe renders a one-line summary of an aggregate map, for logs
func Describe(aggregates map[Category]Stats) string {
	out := ""
	for category, stats := range aggregates {
		if out != "" {
			out += ", "
		}
		out += fmt.Sprintf("%s: %d records / %s", category, stats.Count, util.FormatHours(stats.Hours))
	}
	if out == "" {
		out = "no absences"
	}
	return out
}
