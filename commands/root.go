package commands

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

var (
	// Logging related
	debug bool

	// Credentials
	credentialsFile string

	// Output related
	timezone string

	rootCmd = &cobra.Command{
		Use:   "kreta-bridge",
		Short: "Calendar and absence statistics bridge for the Kréta school portal",
		Long: `kreta-bridge logs into the Kréta school portal the way the mobile app does
and turns the portal's records into things standard tools understand:
iCalendar feeds, absence statistics and an end-of-year forecast.

Examples:
  kreta-bridge absences                         # Weekly absence table for the school year
  kreta-bridge absences --output summary        # Totals and forecast
  kreta-bridge calendar --combine > orarend.ics # Merged calendar to a file
  kreta-bridge blob                             # Print the subscription url blob
  kreta-bridge serve                            # Run the http server`,
		SilenceUsage: true,
	}
)

const (
	defaultLogFile         = "~/.kreta-bridge/logs/app.log"
	defaultCredentialsFile = "~/.kreta-bridge/credentials.json"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&credentialsFile, "credentials", "c", defaultCredentialsFile,
		"Credentials file (json with username, password, institute)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", util.DefaultTimezone,
		"Reference timezone for dates and week boundaries")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
}

// setup initializes logging and the time provider; every subcommand calls it
// first.
func setup() error {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	logFile := expandPath(defaultLogFile)
	ensureDir(filepath.Dir(logFile))
	util.InitLogger(logLevel, logFile, debug)

	return util.InitializeTimeProvider(timezone)
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
