package formatter

import (
	"io"
	"sort"

	"github.com/bytedance/sonic"

	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// JSONFormatter renders week rows as an indented json array
type JSONFormatter struct {
	out io.Writer
}

func NewJSONFormatter(out io.Writer) *JSONFormatter {
	return &JSONFormatter{out: out}
}

type jsonWeek struct {
	Week       uint32         `json:"week"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Categories []jsonCategory `json:"categories"`
	TotalHours float64        `json:"total_hours"`
	TotalCount int            `json:"total_count"`
}

type jsonCategory struct {
	Kind        string  `json:"kind"`
	Description string  `json:"description,omitempty"`
	Count       int     `json:"count"`
	Hours       float64 `json:"hours"`
}

func (f *JSONFormatter) Format(rows []WeekRow) error {
	weeks := make([]jsonWeek, 0, len(rows))
	for _, row := range rows {
		categories := make([]jsonCategory, 0, len(row.Buckets))
		for category, stats := range row.Buckets {
			categories = append(categories, jsonCategory{
				Kind:        category.Kind.String(),
				Description: category.Description,
				Count:       stats.Count,
				Hours:       stats.Hours,
			})
		}
		sort.Slice(categories, func(i, j int) bool {
			if categories[i].Kind != categories[j].Kind {
				return categories[i].Kind < categories[j].Kind
			}
			return categories[i].Description < categories[j].Description
		})

		weeks = append(weeks, jsonWeek{
			Week:       uint32(row.Week),
			From:       util.FormatDate(row.Monday),
			To:         util.FormatDate(row.Sunday),
			Categories: categories,
			TotalHours: row.TotalHours(),
			TotalCount: row.TotalCount(),
		})
	}

	encoded, err := sonic.MarshalIndent(weeks, "", "  ")
	if err != nil {
		return err
	}
	encoded = append(encoded, '\n')
	_, err = f.out.Write(encoded)
	return err
}
