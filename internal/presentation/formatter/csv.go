package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/absence"
	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// CSVFormatter renders one csv line per (week, category) pair
type CSVFormatter struct {
	out io.Writer
}

func NewCSVFormatter(out io.Writer) *CSVFormatter {
	return &CSVFormatter{out: out}
}

func (f *CSVFormatter) Format(rows []WeekRow) error {
	w := csv.NewWriter(f.out)
	defer w.Flush()

	headers := []string{"Week", "From", "To", "Kind", "Description", "Count", "Hours"}
	if err := w.Write(headers); err != nil {
		return err
	}

	for _, row := range rows {
		categories := make([]absence.Category, 0, len(row.Buckets))
		for category := range row.Buckets {
			categories = append(categories, category)
		}
		sort.Slice(categories, func(i, j int) bool {
			return categories[i].String() < categories[j].String()
		})

		for _, category := range categories {
			stats := row.Buckets[category]
			record := []string{
				fmt.Sprintf("%d", row.Week),
				util.FormatDate(row.Monday),
				util.FormatDate(row.Sunday),
				category.Kind.String(),
				category.Description,
				fmt.Sprintf("%d", stats.Count),
				fmt.Sprintf("%.2f", stats.Hours),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}

	return w.Error()
}
