package formatter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/absence"
	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// SummaryFormatter is responsible for formatting and outputting summary reports.
type SummaryFormatter struct {
	out io.Writer
	now time.Time
}

// NewSummaryFormatter creates a new instance of SummaryFormatter. The
// reference time feeds the end-of-year forecast.
func NewSummaryFormatter(out io.Writer, now time.Time) *SummaryFormatter {
	return &SummaryFormatter{out: out, now: now}
}

// Format outputs per-category totals over all weeks plus the forecast.
func (f *SummaryFormatter) Format(rows []WeekRow) error {
	totals := make(map[absence.Category]absence.Stats)
	for _, row := range rows {
		for category, stats := range row.Buckets {
			t := totals[category]
			t.Count += stats.Count
			t.Hours += stats.Hours
			totals[category] = t
		}
	}

	fmt.Fprintln(f.out, strings.Repeat("=", 60))
	fmt.Fprintln(f.out, "Absence Summary Report")
	fmt.Fprintln(f.out, strings.Repeat("=", 60))
	fmt.Fprintln(f.out)

	if len(rows) > 0 {
		first, last := rows[0], rows[len(rows)-1]
		fmt.Fprintf(f.out, "Weeks %d to %d (%s to %s)\n\n",
			first.Week, last.Week,
			util.FormatDate(first.Monday), util.FormatDate(last.Sunday))
	}

	if len(totals) == 0 {
		fmt.Fprintln(f.out, "No absences recorded")
		fmt.Fprintln(f.out)
		fmt.Fprintln(f.out, strings.Repeat("=", 60))
		return nil
	}

	categories := make([]absence.Category, 0, len(totals))
	for category := range totals {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		if totals[categories[i]].Hours != totals[categories[j]].Hours {
			return totals[categories[i]].Hours > totals[categories[j]].Hours
		}
		return categories[i].String() < categories[j].String()
	})

	fmt.Fprintln(f.out, "By Category:")
	for _, category := range categories {
		stats := totals[category]
		fmt.Fprintf(f.out, "  %s %d records, %s\n",
			util.PadRight(category.String()+":", 30), stats.Count, util.FormatHours(stats.Hours))
	}
	fmt.Fprintln(f.out)

	f.printForecast(totals)

	fmt.Fprintln(f.out, strings.Repeat("=", 60))
	return nil
}

func (f *SummaryFormatter) printForecast(totals map[absence.Category]absence.Stats) {
	forecast, err := absence.ExtractForecast(totals, f.now)
	switch {
	case err != nil:
		fmt.Fprintf(f.out, "Forecast: unavailable (%v)\n", err)
	case forecast == nil:
		fmt.Fprintln(f.out, "Forecast: no unexcused absences, nothing to project")
	case forecast.OnlyUnexcused == forecast.WithPending:
		fmt.Fprintf(f.out, "Forecast: ~%s unexcused by end of year\n",
			util.FormatHours(forecast.OnlyUnexcused))
	default:
		fmt.Fprintf(f.out, "Forecast: ~%s unexcused by end of year (%s if pending excuses are accepted)\n",
			util.FormatHours(forecast.WithPending), util.FormatHours(forecast.OnlyUnexcused))
	}
	fmt.Fprintln(f.out)
}
