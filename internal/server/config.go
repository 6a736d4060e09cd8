package server

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// Config is the server's environment-derived configuration
type Config struct {
	// Addr is the listen address, e.g. ":8080"
	Addr string
	// SealKeyPath is where the credential sealing key lives
	SealKeyPath string
	// CredentialsFile, when set, backs the /my/ default-account routes with a
	// watched credentials file. Empty disables those routes.
	CredentialsFile string
	// Timezone overrides the reference timezone
	Timezone string
}

// LoadConfig reads the configuration from the environment, with a .env file
// as an optional source. Every value has a working default.
func LoadConfig() Config {
	if err := godotenv.Load(); err == nil {
		util.LogDebugf("loaded environment from .env")
	}

	return Config{
		Addr:            envOr("BRIDGE_ADDR", ":8080"),
		SealKeyPath:     envOr("BRIDGE_SEAL_KEY", "data/sealing.key"),
		CredentialsFile: os.Getenv("BRIDGE_CREDENTIALS_FILE"),
		Timezone:        envOr("BRIDGE_TIMEZONE", util.DefaultTimezone),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
