package util

import (
	"os"

	"golang.org/x/term"
)

// fallbackWidth is assumed when stdout is not a terminal (pipes, tests)
const fallbackWidth = 100

// TerminalWidth returns the usable display width of stdout
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 20 {
		return fallbackWidth
	}
	return width
}
