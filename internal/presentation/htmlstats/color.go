// Package htmlstats renders absence statistics as a small self-contained html
// page: a column chart per excuse category, an svg line chart per week and an
// end-of-year forecast sentence. No javascript, inline styles only, so the
// page survives the strictest webmail and in-app browsers.
package htmlstats

import (
	"fmt"
	"hash/fnv"
	"io"
)

// hashToColor derives a stable display color from a label. The same category
// gets the same color on every render without anyone maintaining a palette.
func hashToColor(label string) string {
	h := fnv.New64a()
	io.WriteString(h, label)
	sum := h.Sum64()

	r := uint8(sum >> 24)
	g := uint8(sum >> 16)
	b := uint8(sum >> 8)
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}
