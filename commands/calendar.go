package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/combine"
	"github.com/kreta-tools/go-kreta-bridge/internal/data/credstore"
	"github.com/kreta-tools/go-kreta-bridge/internal/data/kreta"
	"github.com/kreta-tools/go-kreta-bridge/internal/presentation/ics"
	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

var (
	calendarCombine bool
	calendarFrom    string
	calendarTo      string

	calendarCmd = &cobra.Command{
		Use:   "calendar",
		Short: "Print the timetable as an iCalendar feed",
		Long: `Fetches the timetable and prints it to stdout in iCalendar format.
With --combine, homework, announced exams and absences are correlated onto
the lessons and unmatched records become standalone events.

The default window is two weeks back to two weeks ahead.`,
		RunE: runCalendar,
	}
)

func init() {
	calendarCmd.Flags().BoolVar(&calendarCombine, "combine", false,
		"Merge homework, exams and absences onto the lessons")
	calendarCmd.Flags().StringVar(&calendarFrom, "from", "",
		"Window start (yyyy-mm-dd)")
	calendarCmd.Flags().StringVar(&calendarTo, "to", "",
		"Window end (yyyy-mm-dd)")
	rootCmd.AddCommand(calendarCmd)
}

func runCalendar(cmd *cobra.Command, args []string) error {
	if err := setup(); err != nil {
		return err
	}

	from, to, err := calendarWindow()
	if err != nil {
		return err
	}

	creds, err := credstore.LoadFile(expandPath(credentialsFile))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := kreta.FullLogin(ctx, creds)
	if err != nil {
		return err
	}

	opts := ics.DefaultOptions()

	var calendar string
	if calendarCombine {
		merged, remainder, err := combine.NewJoiner(client).MergeWithRemainder(ctx, from, to)
		if err != nil {
			return err
		}
		calendar, err = ics.MergedCalendar(merged, remainder, opts)
		if err != nil {
			return err
		}
	} else {
		lessons, err := client.Lessons(ctx, from, to)
		if err != nil {
			return err
		}
		calendar, err = ics.LessonsCalendar(lessons, opts)
		if err != nil {
			return err
		}
	}

	fmt.Print(calendar)
	return nil
}

// calendarWindow resolves the --from/--to flags, defaulting to a month
// centered on today
func calendarWindow() (time.Time, time.Time, error) {
	now := util.GetTimeProvider().Now()
	from := now.AddDate(0, 0, -14)
	to := now.AddDate(0, 0, 14)

	loc := util.GetTimeProvider().Location()
	if calendarFrom != "" {
		parsed, err := time.ParseInLocation(util.ISODate, calendarFrom, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing --from: %w", err)
		}
		from = parsed
	}
	if calendarTo != "" {
		parsed, err := time.ParseInLocation(util.ISODate, calendarTo, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing --to: %w", err)
		}
		to = parsed
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s",
			to.Format(util.ISODate), from.Format(util.ISODate))
	}
	return from, to, nil
}
