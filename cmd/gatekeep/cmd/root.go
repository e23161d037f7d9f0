package cmd

import (
	"github.com/spf13/cobra"
)

// Version is the gatekeep tool version.
const Version = "0.1.0"

var (
	configFile string
	dataFile   string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "gatekeep",
	Short: "Gatekeep accessibility-rule compiler",
	Long:  `Gatekeep compiles gate accessibility rules into predicates and item dependency maps.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dataFile, "data", "", "ruleset data file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func Execute() error {
	return rootCmd.Execute()
}
