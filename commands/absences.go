package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/absence"
	"github.com/kreta-tools/go-kreta-bridge/internal/core/schoolyear"
	"github.com/kreta-tools/go-kreta-bridge/internal/data/credstore"
	"github.com/kreta-tools/go-kreta-bridge/internal/data/kreta"
	"github.com/kreta-tools/go-kreta-bridge/internal/presentation/formatter"
	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

var (
	absencesOutput string

	absencesCmd = &cobra.Command{
		Use:   "absences",
		Short: "Weekly absence statistics for the running school year",
		RunE:  runAbsences,
	}
)

func init() {
	absencesCmd.Flags().StringVarP(&absencesOutput, "output", "o", "table",
		"Output format (table, json, csv, summary)")
	rootCmd.AddCommand(absencesCmd)
}

func runAbsences(cmd *cobra.Command, args []string) error {
	if err := setup(); err != nil {
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

	now := util.GetTimeProvider().Now()
	anchor := schoolyear.Anchor(now)

	records, err := client.AbsencesSinceAnchor(ctx, anchor, now)
	if err != nil {
		return err
	}

	weekly, err := absence.SplitByWeekAndCategory(records, anchor)
	if err != nil {
		return err
	}
	rows := formatter.BuildWeekRows(weekly, anchor)

	switch absencesOutput {
	case "table":
		return formatter.NewTableFormatter(os.Stdout).Format(rows)
	case "json":
		return formatter.NewJSONFormatter(os.Stdout).Format(rows)
	case "csv":
		return formatter.NewCSVFormatter(os.Stdout).Format(rows)
	case "summary":
		return formatter.NewSummaryFormatter(os.Stdout, now).Format(rows)
	default:
		return fmt.Errorf("unknown output format %q (expected table, json, csv or summary)", absencesOutput)
	}
}
