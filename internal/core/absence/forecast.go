package absence

import (
	"errors"
	"time"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/schoolyear"
	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// SchoolYearMonths is how long a school year runs; the forecast scales the
// per-month average up to this.
const SchoolYearMonths = 9.5

// meanMonthDays is the mean calendar month length (365.2425 / 12)
const meanMonthDays = 30.436875

// ErrNoElapsedTime means the forecast was asked for at the very moment the
// school year started; there is no rate to extrapolate from yet.
var ErrNoElapsedTime = errors.New("no time elapsed since the school year started")

// MonthsSinceAnchor returns the elapsed school-year time in mean calendar
// months. A now before the anchor clamps to zero with a warning, consistent
// with the week-index clamping policy.
func MonthsSinceAnchor(now, anchor time.Time) float64 {
	days := now.Sub(anchor).Hours() / 24
	if days < 0 {
		util.LogWarnf("forecast reference time %s is before the school year anchor %s, clamping elapsed time to 0",
			now.Format(util.ISODate), anchor.Format(util.ISODate))
		return 0
	}
	return days / meanMonthDays
}

// ForecastValue linearly projects a value observed over monthsElapsed to a
// full school year. Zero elapsed months is a guarded error; NaN or Inf never
// leave this function.
func ForecastValue(observed, monthsElapsed float64) (float64, error) {
	if monthsElapsed == 0 {
		return 0, ErrNoElapsedTime
	}
	perMonth := observed / monthsElapsed
	return perMonth * SchoolYearMonths, nil
}

// Forecast is the projected end-of-year unexcused hour count, with and
// without the still-pending absences counted in. WithPending is never below
// OnlyUnexcused as long as pending hours are non-negative.
type Forecast struct {
	OnlyUnexcused float64
	WithPending   float64
}

// ExtractForecast reads the unexcused hours out of an aggregate map and
// projects them to the end of the school year. Returns nil when there are no
// unexcused absences: nothing to forecast is not an error. Pending hours, if
// any, are added for the second estimate.
func ExtractForecast(aggregates map[Category]Stats, now time.Time) (*Forecast, error) {
	unexcused, ok := HoursOfKind(aggregates, KindUnexcused)
	if !ok {
		return nil, nil
	}

	months := MonthsSinceAnchor(now, schoolyear.Anchor(now))

	onlyUnexcused, err := ForecastValue(unexcused, months)
	if err != nil {
		return nil, err
	}

	withPending := onlyUnexcused
	if pending, ok := HoursOfKind(aggregates, KindPending); ok {
		withPending, err = ForecastValue(unexcused+pending, months)
		if err != nil {
			return nil, err
		}
	}

	return &Forecast{OnlyUnexcused: onlyUnexcused, WithPending: withPending}, nil
}
