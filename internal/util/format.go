package util

import (
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"
)

// ISODate is the yyyy-mm-dd layout the portal API uses for query windows.
const ISODate = "2006-01-02"

// FormatHours renders an hour quantity with one decimal, e.g. "12.5h"
func FormatHours(hours float64) string {
	return fmt.Sprintf("%.1fh", hours)
}

// FormatDate renders a date in the portal's yyyy-mm-dd form
func FormatDate(t time.Time) string {
	return t.Format(ISODate)
}

// FormatWeekSpan renders a Monday-Sunday span, e.g. "2025-09-01 .. 2025-09-07"
func FormatWeekSpan(monday, sunday time.Time) string {
	return monday.Format(ISODate) + " .. " + sunday.Format(ISODate)
}

// DisplayWidth calculates the display width of a string; subject names are
// Hungarian and may contain wide or combining runes.
func DisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadRight pads a string with spaces to the given display width
func PadRight(text string, width int) string {
	pad := width - DisplayWidth(text)
	for pad > 0 {
		text += " "
		pad--
	}
	return text
}
