package htmlstats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/absence"
	"github.com/kreta-tools/go-kreta-bridge/internal/core/schoolyear"
)

// CategoryColumns renders one labelled column per category, shortest first.
// Column height scales directly with the hour total.
func CategoryColumns(aggregates map[absence.Category]absence.Stats) string {
	type entry struct {
		category absence.Category
		stats    absence.Stats
	}

	sorted := make([]entry, 0, len(aggregates))
	for category, stats := range aggregates {
		sorted = append(sorted, entry{category, stats})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].stats.Hours != sorted[j].stats.Hours {
			return sorted[i].stats.Hours < sorted[j].stats.Hours
		}
		return categoryLabel(sorted[i].category) < categoryLabel(sorted[j].category)
	})

	var cols strings.Builder
	for _, e := range sorted {
		label := categoryLabel(e.category)
		fmt.Fprintf(&cols, `
		<div style="display: flex; align-items: center; flex-direction: column;">
			<div style="display: flex; justify-content: center; color: black; margin: 0.5rem; margin-bottom: 0.3rem;">
				%s
			</div>
			<div style="display: flex; justify-content: center; color: black; margin: 0.2rem; font-weight: bold;">
				%.1f óra
			</div>
			<div style="height: %.2fem; width: 5.0em; background-color: %s;">
			</div>
		</div>`,
			htmlEscape(label), e.stats.Hours, e.stats.Hours*0.6, hashToColor(label))
	}

	return fmt.Sprintf(
		`<div style="display: flex; flex-direction: row; justify-content: center; align-items: flex-start;">%s</div>`,
		cols.String())
}

// WeeklyLines renders an svg line chart: one polyline per category, hours on
// the vertical axis, school week on the horizontal. Weeks without a record of
// a category plot as zero, so the lines stay continuous.
func WeeklyLines(weekly map[schoolyear.WeekIndex]map[absence.Category]absence.Stats) string {
	categories := make(map[absence.Category]struct{})
	highestHours := 0.0
	var highestWeek schoolyear.WeekIndex

	for week, buckets := range weekly {
		if week > highestWeek {
			highestWeek = week
		}
		for category, stats := range buckets {
			categories[category] = struct{}{}
			if stats.Hours > highestHours {
				highestHours = stats.Hours
			}
		}
	}
	highestHours = math.Ceil(highestHours)

	weeks := make([]schoolyear.WeekIndex, 0, len(weekly))
	for week := range weekly {
		weeks = append(weeks, week)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i] < weeks[j] })

	sortedCategories := make([]absence.Category, 0, len(categories))
	for category := range categories {
		sortedCategories = append(sortedCategories, category)
	}
	sort.Slice(sortedCategories, func(i, j int) bool {
		return categoryLabel(sortedCategories[i]) < categoryLabel(sortedCategories[j])
	})

	var lines strings.Builder
	for _, category := range sortedCategories {
		points := make([]string, 0, len(weeks))
		for _, week := range weeks {
			hours := weekly[week][category].Hours

			x, y := 0.0, 100.0
			if highestWeek > 0 {
				x = float64(week) / float64(highestWeek) * 100
			}
			if highestHours > 0 {
				y = 100 - hours/highestHours*100
			}
			points = append(points, fmt.Sprintf("%.2f,%.2f", x, y))
		}

		fmt.Fprintf(&lines,
			`<polyline fill="none" stroke="%s" stroke-width="1" points="%s" />`,
			hashToColor(categoryLabel(category)), strings.Join(points, " "))
	}

	return fmt.Sprintf(`
	<div style="display: flex; align-items: center; flex-direction: column; margin: 1rem;">
		<svg viewBox="0 0 100 100" style="width: 80rem; max-width: 100%%; max-height: 100%%;">
			%s
		</svg>
	</div>`, lines.String())
}

// categoryLabel is the display name of a category: the excuse label where
// there is one, the kind otherwise.
func categoryLabel(c absence.Category) string {
	if c.Description != "" {
		return c.Description
	}
	switch c.Kind {
	case absence.KindUnexcused:
		return "igazolatlan"
	case absence.KindPending:
		return "igazolandó"
	case absence.KindExcused:
		return "igazolt"
	default:
		return "ismeretlen"
	}
}

func htmlEscape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}
