package absence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/model"
)

func lateBy(minutes int) *int {
	return &minutes
}

func TestAggregate(t *testing.T) {
	records := []model.Absence{
		record("1", "Igazolatlan", nil),
		record("2", "Igazolatlan", nil),
		record("3", "Igazolando", nil),
		record("4", "Igazolt", &model.UidNameDesc{Name: "Orvosi igazolas"}),
	}
	// a 15-minute lateness contributes a third of a lesson-hour
	records[2].LateMinutes = lateBy(15)

	result := Aggregate(records)

	require.Len(t, result, 3)
	assert.Equal(t, Stats{Count: 2, Hours: 2.0}, result[Category{Kind: KindUnexcused}])
	assert.InDelta(t, 15.0/45.0, result[Category{Kind: KindPending}].Hours, 1e-9)
	assert.Equal(t, 1, result[Category{Kind: KindExcused, Description: "Orvosi igazolas"}].Count)
}

// One malformed record must never abort processing of the rest: it is
// reported and excluded, and the totals only cover classified records.
func TestAggregateSkipsMalformed(t *testing.T) {
	records := []model.Absence{
		record("1", "Igazolatlan", nil),
		record("2", "Igazolt", nil), // excused but no excuse type
		record("3", "Teljesen-mas", nil),
		record("4", "Igazolando", nil),
	}

	result := Aggregate(records)

	assert.Equal(t, 2, TotalCount(result))
	assert.NotContains(t, result, Category{Kind: KindUnclassified})
}

func TestAggregateWithUnclassified(t *testing.T) {
	records := []model.Absence{
		record("1", "Igazolatlan", nil),
		record("2", "Igazolt", nil),
		record("3", "Teljesen-mas", nil),
	}

	result := AggregateWithUnclassified(records)

	// every record lands somewhere
	assert.Equal(t, len(records), TotalCount(result))
	assert.Equal(t, 2, result[Category{Kind: KindUnclassified}].Count)
}

func TestAggregateTotalsMatchClassified(t *testing.T) {
	records := []model.Absence{
		record("1", "Igazolatlan", nil),
		record("2", "Igazolando", nil),
		record("3", "Igazolt", &model.UidNameDesc{Name: "Szuloi igazolas"}),
		record("4", "Igazolt", &model.UidNameDesc{Name: "Orvosi igazolas"}),
		record("5", "rossz", nil),
	}

	classified := 0
	for i := range records {
		if _, err := Classify(&records[i]); err == nil {
			classified++
		}
	}

	assert.Equal(t, classified, TotalCount(Aggregate(records)))
}

func TestHoursOfKind(t *testing.T) {
	aggregates := map[Category]Stats{
		{Kind: KindExcused, Description: "Orvosi igazolas"}: {Count: 2, Hours: 2},
		{Kind: KindExcused, Description: "Szuloi igazolas"}: {Count: 1, Hours: 1},
		{Kind: KindUnexcused}:                               {Count: 3, Hours: 3},
	}

	excused, ok := HoursOfKind(aggregates, KindExcused)
	require.True(t, ok)
	assert.Equal(t, 3.0, excused)

	_, ok = HoursOfKind(aggregates, KindPending)
	assert.False(t, ok)
}

func TestAggregateEmpty(t *testing.T) {
	result := Aggregate(nil)
	assert.Empty(t, result)
	assert.Equal(t, "no absences", Describe(result))
}
