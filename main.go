package main

import (
	"os"

	"github.com/kreta-tools/go-kreta-bridge/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
