package main

import (
	"os"

	"github.com/trendpulse/backend/cmd/trendpulse/commands"
)

// main is the entry point for the trendpulse CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
