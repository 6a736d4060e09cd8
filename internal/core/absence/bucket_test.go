package absence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/model"
	"github.com/kreta-tools/go-kreta-bridge/internal/core/schoolyear"
)

func timedRecord(uid, status, start string) model.Absence {
	rec := record(uid, status, nil)
	rec.Lesson.StartTime = start
	return rec
}

func TestSplitByWeek(t *testing.T) {
	anchor := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	records := []model.Absence{
		timedRecord("1", "Igazolatlan", "2025-09-02T07:15:00Z"),
		timedRecord("2", "Igazolatlan", "2025-09-03T08:10:00Z"),
		timedRecord("3", "Igazolando", "2025-09-10T07:15:00Z"),
	}

	buckets, err := SplitByWeek(records, anchor)
	require.NoError(t, err)

	require.Len(t, buckets, 2)
	require.Len(t, buckets[0], 2)
	require.Len(t, buckets[1], 1)

	// input order survives within a bucket
	assert.Equal(t, "1", buckets[0][0].Uid)
	assert.Equal(t, "2", buckets[0][1].Uid)

	// absent key, not a present-empty bucket
	_, present := buckets[2]
	assert.False(t, present)
}

func TestSplitByWeekIdempotent(t *testing.T) {
	anchor := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	records := []model.Absence{
		timedRecord("1", "Igazolatlan", "2025-09-02T07:15:00Z"),
		timedRecord("2", "Igazolando", "2025-09-02T08:10:00Z"),
		timedRecord("3", "Igazolatlan", "2025-10-01T07:15:00Z"),
	}

	first, err := SplitByWeek(records, anchor)
	require.NoError(t, err)
	second, err := SplitByWeek(records, anchor)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSplitByWeekBadTimestamp(t *testing.T) {
	anchor := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	records := []model.Absence{
		timedRecord("ok", "Igazolatlan", "2025-09-02T07:15:00Z"),
		timedRecord("broken-rec", "Igazolatlan", "nem-datum"),
	}

	_, err := SplitByWeek(records, anchor)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken-rec")
	assert.Contains(t, err.Error(), "nem-datum")
}

func TestSplitByWeekFallsBackToDate(t *testing.T) {
	anchor := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	rec := record("1", "Igazolatlan", nil)
	rec.Date = "2025-09-02T00:00:00Z"

	buckets, err := SplitByWeek([]model.Absence{rec}, anchor)
	require.NoError(t, err)
	assert.Len(t, buckets[0], 1)
}

func TestSplitByWeekAndCategory(t *testing.T) {
	anchor := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	records := []model.Absence{
		timedRecord("1", "Igazolatlan", "2025-09-02T07:15:00Z"),
		timedRecord("2", "Igazolatlan", "2025-09-03T08:10:00Z"),
		timedRecord("3", "Igazolando", "2025-09-03T09:05:00Z"),
		timedRecord("4", "Igazolatlan", "2025-09-10T07:15:00Z"),
		// malformed: skipped, not fatal
		timedRecord("5", "Igazolt", "2025-09-10T08:10:00Z"),
	}

	buckets, err := SplitByWeekAndCategory(records, anchor)
	require.NoError(t, err)

	require.Len(t, buckets, 2)
	week0 := buckets[schoolyear.WeekIndex(0)]
	assert.Equal(t, Stats{Count: 2, Hours: 2}, week0[Category{Kind: KindUnexcused}])
	assert.Equal(t, Stats{Count: 1, Hours: 1}, week0[Category{Kind: KindPending}])

	week1 := buckets[schoolyear.WeekIndex(1)]
	assert.Equal(t, Stats{Count: 1, Hours: 1}, week1[Category{Kind: KindUnexcused}])
	assert.Len(t, week1, 1)
}

func TestSplitByWeekAndCategoryBadTimestamp(t *testing.T) {
	anchor := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	records := []model.Absence{
		timedRecord("x", "Igazolatlan", "definitely not a time"),
	}

	_, err := SplitByWeekAndCategory(records, anchor)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x")
}
