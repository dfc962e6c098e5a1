package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "actuate",
	Short: "Management endpoints with HAL links",
	Long: `actuate serves management endpoints (health, info, env, metrics,
trace, mappings, configprops, prometheus) and links them together with
HAL hypermedia.

Quick start:
  actuate serve       # Start the management server
  actuate links       # Print the root links resource
  actuate endpoints   # List the configured endpoints
  actuate validate    # Validate configuration`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default $ACTUATE_CONFIG or actuate.yaml)")
}
