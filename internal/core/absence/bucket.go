package absence

import (
	"fmt"
	"time"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/model"
	"github.com/kreta-tools/go-kreta-bridge/internal/core/schoolyear"
	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// SplitByWeek groups absence records into school-week buckets relative to the
// anchor. Buckets are created lazily: a week with no records has no map entry.
// Within a bucket the input order is preserved. A record whose lesson start
// time fails to parse aborts the call with the record's uid in the error;
// records are never dropped silently.
func SplitByWeek(records []model.Absence, anchor time.Time) (map[schoolyear.WeekIndex][]model.Absence, error) {
	buckets := make(map[schoolyear.WeekIndex][]model.Absence)

	for i := range records {
		date, err := recordTime(&records[i])
		if err != nil {
			return nil, err
		}

		index := schoolyear.WeekIndexAt(date, anchor)
		buckets[index] = append(buckets[index], records[i])
	}

	return buckets, nil
}

// SplitByWeekAndCategory performs two-level grouping in one pass: first by
// week, then by category, accumulating counts and hours. Parse failures abort
// the call like SplitByWeek; classification failures only skip the record,
// matching Aggregate's partial-failure policy.
func SplitByWeekAndCategory(records []model.Absence, anchor time.Time) (map[schoolyear.WeekIndex]map[Category]Stats, error) {
	buckets := make(map[schoolyear.WeekIndex]map[Category]Stats)

	for i := range records {
		date, err := recordTime(&records[i])
		if err != nil {
			return nil, err
		}

		category, err := Classify(&records[i])
		if err != nil {
			util.LogWarnf("skipping record in weekly aggregation: %v", err)
			continue
		}

		index := schoolyear.WeekIndexAt(date, anchor)
		week := buckets[index]
		if week == nil {
			week = make(map[Category]Stats)
			buckets[index] = week
		}

		stats := week[category]
		stats.add(&records[i])
		week[category] = stats
	}

	return buckets, nil
}

// recordTime parses the defining timestamp of an absence record and shifts it
// into the reference timezone so bucketing ignores the source zone.
func recordTime(rec *model.Absence) (time.Time, error) {
	raw := rec.Lesson.StartTime
	if raw == "" {
		raw = rec.Date
	}

	date, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing start time %q of absence %s: %w", raw, rec.Uid, err)
	}
	return util.GetTimeProvider().In(date), nil
}
