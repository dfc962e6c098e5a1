package main

import (
	"github.com/spf13/cobra"

	"github.com/artpar/actuate/bootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the management server",
	Long: `Start the actuate management server.

The server will:
  - Load configuration from actuate.yaml (or --config, or $ACTUATE_CONFIG)
  - Or load configuration from ACTUATE_* environment variables
  - Reload the config file on change or SIGHUP
  - Shut down gracefully on SIGINT or SIGTERM

Environment variables:
  ACTUATE_SERVER_PORT             - Server port (default: 8081)
  ACTUATE_MANAGEMENT_CONTEXT_PATH - Prefix of every management path
  ACTUATE_METRICS_ENABLED         - Collect request metrics
  ACTUATE_LOG_LEVEL               - Log level: debug, info, warn, error

Examples:
  actuate serve
  actuate serve --config /etc/actuate/actuate.yaml
  ACTUATE_MANAGEMENT_CONTEXT_PATH=/admin actuate serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.NewWithOptions(bootstrap.Options{ConfigPath: cfgFile})
	if err != nil {
		return err
	}
	return app.Run()
}
