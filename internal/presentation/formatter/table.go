package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/absence"
	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// TableFormatter renders week rows as a box-drawn terminal table. When the
// terminal is too narrow for the full table the span column shrinks to the
// week's Monday.
type TableFormatter struct {
	out      io.Writer
	headers  []string
	maxWidth int
	compact  bool
}

func NewTableFormatter(out io.Writer) *TableFormatter {
	return &TableFormatter{
		out: out,
		headers: []string{
			"Week", "Span", "Unexcused", "Pending", "Excused", "Total",
		},
		maxWidth: util.TerminalWidth(),
	}
}

func (f *TableFormatter) Format(rows []WeekRow) error {
	widths := f.calculateColumnWidths(rows)
	if tableWidth(widths) > f.maxWidth {
		f.compact = true
		widths = f.calculateColumnWidths(rows)
	}

	f.printBorder(widths, "top")
	f.printRow(f.headers, widths)
	f.printBorder(widths, "middle")

	var totalUnexcused, totalPending, totalExcused, total float64
	for _, row := range rows {
		f.printRow(f.rowValues(&row), widths)

		totalUnexcused += row.HoursOfKind(absence.KindUnexcused)
		totalPending += row.HoursOfKind(absence.KindPending)
		totalExcused += row.HoursOfKind(absence.KindExcused)
		total += row.TotalHours()
	}

	f.printBorder(widths, "middle")
	f.printRow([]string{
		"Total",
		"",
		util.FormatHours(totalUnexcused),
		util.FormatHours(totalPending),
		util.FormatHours(totalExcused),
		util.FormatHours(total),
	}, widths)
	f.printBorder(widths, "bottom")

	return nil
}

func (f *TableFormatter) rowValues(row *WeekRow) []string {
	span := util.FormatWeekSpan(row.Monday, row.Sunday)
	if f.compact {
		span = util.FormatDate(row.Monday)
	}
	return []string{
		fmt.Sprintf("%d", row.Week),
		span,
		util.FormatHours(row.HoursOfKind(absence.KindUnexcused)),
		util.FormatHours(row.HoursOfKind(absence.KindPending)),
		util.FormatHours(row.HoursOfKind(absence.KindExcused)),
		util.FormatHours(row.TotalHours()),
	}
}

// calculateColumnWidths sizes each column to its widest value
func (f *TableFormatter) calculateColumnWidths(rows []WeekRow) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = util.DisplayWidth(header)
	}

	for _, row := range rows {
		for i, value := range f.rowValues(&row) {
			if w := util.DisplayWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}

	for i := range widths {
		if widths[i] < 6 {
			widths[i] = 6
		}
	}
	return widths
}

// tableWidth is the full rendered width: borders, padding and separators
func tableWidth(widths []int) int {
	total := 1
	for _, w := range widths {
		total += w + 3
	}
	return total
}

func (f *TableFormatter) printBorder(widths []int, borderType string) {
	var left, middle, right string

	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	fmt.Fprint(f.out, left)
	for i, width := range widths {
		fmt.Fprint(f.out, strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			fmt.Fprint(f.out, middle)
		}
	}
	fmt.Fprintln(f.out, right)
}

func (f *TableFormatter) printRow(values []string, widths []int) {
	fmt.Fprint(f.out, "│")
	for i, value := range values {
		if i <= 1 {
			// week and span are left-aligned
			fmt.Fprintf(f.out, " %s │", util.PadRight(value, widths[i]))
		} else {
			pad := widths[i] - util.DisplayWidth(value)
			fmt.Fprintf(f.out, " %s%s │", strings.Repeat(" ", pad), value)
		}
	}
	fmt.Fprintln(f.out)
}
