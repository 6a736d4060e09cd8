// Package timerange splits a date window into chunks the portal API accepts.
// Most endpoints cap the queried distance at three weeks; a season-long query
// has to be issued as several consecutive windows.
package timerange

import "time"

// Window is a [From, To) slice of a larger query range
type Window struct {
	From time.Time
	To   time.Time
}

// MaxAbsenceWindow and MaxHomeworkWindow are the portal's documented query
// limits for the respective endpoints.
const (
	MaxAbsenceWindow  = 21 * 24 * time.Hour
	MaxHomeworkWindow = 21 * 24 * time.Hour
)

// Split cuts [from, to) into consecutive windows no longer than max. The last
// window is shortened to end exactly at to. An empty or inverted range yields
// no windows.
func Split(from, to time.Time, max time.Duration) []Window {
	if max <= 0 || !from.Before(to) {
		return nil
	}

	var windows []Window
	for cursor := from; cursor.Before(to); {
		end := cursor.Add(max)
		if end.After(to) {
			end = to
		}
		windows = append(windows, Window{From: cursor, To: end})
		cursor = end
	}
	return windows
}
