package kreta

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/model"
	"github.com/kreta-tools/go-kreta-bridge/internal/core/timerange"
	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// Per-endpoint window caps. The portal rejects queries spanning more than
// this, so longer ranges are split and fetched chunk by chunk.
const (
	maxLessonWindow = 28 * 24 * time.Hour
	maxExamWindow   = 21 * 24 * time.Hour

	chunkConcurrency = 4
)

// Lessons fetches timetable entries for the window, chunked as needed.
// Endpoint: /ellenorzo/v3/sajat/OrarendElemek
func (c *Client) Lessons(ctx context.Context, from, to time.Time) ([]model.Lesson, error) {
	return fetchWindows[model.Lesson](ctx, c, "OrarendElemek", from, to, maxLessonWindow)
}

// Homework fetches assignments for the window.
// Endpoint: /ellenorzo/v3/sajat/HaziFeladatok
func (c *Client) Homework(ctx context.Context, from, to time.Time) ([]model.Homework, error) {
	return fetchWindows[model.Homework](ctx, c, "HaziFeladatok", from, to, timerange.MaxHomeworkWindow)
}

// Exams fetches announced tests for the window.
// Endpoint: /ellenorzo/v3/sajat/BejelentettSzamonkeresek
func (c *Client) Exams(ctx context.Context, from, to time.Time) ([]model.Exam, error) {
	return fetchWindows[model.Exam](ctx, c, "BejelentettSzamonkeresek", from, to, maxExamWindow)
}

// Absences fetches missed-lesson records for the window.
// Endpoint: /ellenorzo/v3/sajat/Mulasztasok
func (c *Client) Absences(ctx context.Context, from, to time.Time) ([]model.Absence, error) {
	return fetchWindows[model.Absence](ctx, c, "Mulasztasok", from, to, timerange.MaxAbsenceWindow)
}

// AbsencesSinceAnchor fetches every absence of the running school year
func (c *Client) AbsencesSinceAnchor(ctx context.Context, anchor, now time.Time) ([]model.Absence, error) {
	records, err := c.Absences(ctx, anchor, now)
	if err != nil {
		return nil, fmt.Errorf("querying all absences since %s: %w", anchor.Format(util.ISODate), err)
	}
	return records, nil
}

// fetchWindows splits the range, fetches the chunks concurrently and stitches
// the results back together in chronological chunk order. The first failing
// chunk fails the whole fetch.
func fetchWindows[T any](ctx context.Context, c *Client, endpoint string, from, to time.Time, max time.Duration) ([]T, error) {
	windows := timerange.Split(from, to, max)
	if len(windows) == 0 {
		return nil, nil
	}

	chunks := make([][]T, len(windows))
	errs := make([]error, len(windows))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, chunkConcurrency)

	for i, window := range windows {
		wg.Add(1)
		go func(i int, window timerange.Window) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			chunks[i], errs[i] = fetchOne[T](ctx, c, endpoint, window)
		}(i, window)
	}
	wg.Wait()

	var out []T
	for i := range windows {
		if errs[i] != nil {
			return nil, errs[i]
		}
		out = append(out, chunks[i]...)
	}
	return out, nil
}

func fetchOne[T any](ctx context.Context, c *Client, endpoint string, window timerange.Window) ([]T, error) {
	url := fmt.Sprintf("https://%s.e-kreta.hu/ellenorzo/v3/sajat/%s?datumTol=%s&datumIg=%s",
		c.institute, endpoint,
		window.From.Format(util.ISODate), window.To.Format(util.ISODate))

	util.LogDebugf("fetching %s", url)
	body, err := c.getJSON(ctx, url)
	if err != nil {
		return nil, err
	}

	var records []T
	if err := sonic.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("deserializing response from %s: %w", url, err)
	}
	return records, nil
}
