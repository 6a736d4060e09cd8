package commands

import (
	"github.com/spf13/cobra"

	"github.com/kreta-tools/go-kreta-bridge/internal/server"
)

var (
	serveAddr string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the http server",
		Long: `Serves calendar feeds and absence statistics over http. Configuration comes
from the environment (BRIDGE_ADDR, BRIDGE_SEAL_KEY, BRIDGE_TIMEZONE), with an
optional .env file; --addr overrides the listen address.`,
		RunE: runServe,
	}
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"Listen address (overrides BRIDGE_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := setup(); err != nil {
		return err
	}

	cfg := server.LoadConfig()
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	cfg.Timezone = timezone

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	return srv.Listen(cfg.Addr)
}
