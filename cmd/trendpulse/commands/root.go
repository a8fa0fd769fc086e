package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "trendpulse",
	Short: "Trendpulse - trend health analytics backend",
	Long: `Trendpulse CLI

Early decline signal detection for social media trends: four decline
signals, weighted risk scoring, alert levels and days-to-critical
projection.

Usage:
  go run ./cmd/trendpulse [command]

Examples:
  go run ./cmd/trendpulse api
  go run ./cmd/trendpulse evaluate dance-challenge-2026
  go run ./cmd/trendpulse scheduler`,
}

// Execute adds all child commands to the root command and sets flags.
// Called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
