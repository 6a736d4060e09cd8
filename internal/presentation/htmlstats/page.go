package htmlstats

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/absence"
	"github.com/kreta-tools/go-kreta-bridge/internal/core/schoolyear"
	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

//go:embed frame.html
var frame string

// ForecastHTML renders the end-of-year projection as a Hungarian sentence.
// No unexcused absences is the happy case, not an error.
func ForecastHTML(aggregates map[absence.Category]absence.Stats, now time.Time) string {
	forecast, err := absence.ExtractForecast(aggregates, now)

	var body string
	switch {
	case err != nil:
		util.LogWarnf("forecast unavailable: %v", err)
		body = "Az év eleji adatokból még nem számolható előrejelzés."
	case forecast == nil:
		body = "Nincs igazolatlan mulasztásod."
	case forecast.OnlyUnexcused == forecast.WithPending:
		body = fmt.Sprintf(
			`Év végére kb. <span style="font-weight: bold;">%.1f óra</span> igazolatlanod lesz.`,
			forecast.OnlyUnexcused)
	default:
		body = fmt.Sprintf(
			`Év végére kb. <span style="font-weight: bold;">%.1f óra</span> igazolatlanod lesz. <br>
			Ha az igazolandó mulasztásaid igazolva lesznek, ez csak <span style="font-weight: bold;">%.1f óra</span>.`,
			forecast.WithPending, forecast.OnlyUnexcused)
	}

	return fmt.Sprintf(`
	<div style="display: flex; align-items: center; flex-direction: column; margin: 1rem;">
		<div style="margin: 1rem;">
			%s
		</div>
	</div>`, body)
}

// StatsPage assembles the full absences page: column chart, forecast
// sentence and the weekly line chart, wrapped in the html frame.
func StatsPage(
	aggregates map[absence.Category]absence.Stats,
	weekly map[schoolyear.WeekIndex]map[absence.Category]absence.Stats,
	now time.Time,
) string {
	var content strings.Builder

	content.WriteString(`<div style="font-size: 0.85rem;">`)
	content.WriteString(CategoryColumns(aggregates))
	content.WriteString("</div>\n\n")
	content.WriteString(ForecastHTML(aggregates, now))
	if len(weekly) > 0 {
		content.WriteString(WeeklyLines(weekly))
	}

	return strings.Replace(frame, "{content}", content.String(), 1)
}
