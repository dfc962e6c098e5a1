package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/actuate/app"
	"github.com/artpar/actuate/bootstrap"
	"github.com/artpar/actuate/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the actuate configuration.

Checks:
  - YAML syntax is valid
  - Paths are well formed and unique
  - The root links resource can be built

Without a config file the environment and defaults are validated.

Examples:
  actuate validate
  actuate validate --config /etc/actuate/actuate.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	path := bootstrap.ResolveConfigPath(cfgFile)

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "Validating %s...\n\n", path)
	} else {
		fmt.Fprintf(out, "No config file at %s, validating environment...\n\n", path)
	}

	cfg, err := config.LoadWithFallback(path)
	if err != nil {
		fmt.Fprintf(out, "  %s Config valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Fprintf(out, "  %s Config valid\n", checkMark)

	if _, err := app.BuildRootResource(rootPaths(cfg), cfg.Descriptors(), cfg.Management.ContextPath); err != nil {
		fmt.Fprintf(out, "  %s Root links\n", crossMark)
		return fmt.Errorf("links error: %w", err)
	}
	fmt.Fprintf(out, "  %s Root links\n", checkMark)

	fmt.Fprintf(out, "  %s Listen address: %s\n", checkMark, cfg.Server.Addr())
	fmt.Fprintf(out, "  %s Context path: %q\n", checkMark, cfg.Management.ContextPath)
	fmt.Fprintf(out, "  %s Endpoints enabled: %d\n", checkMark, len(cfg.Descriptors()))

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}

// rootPaths returns the paths excluded from the root resource.
func rootPaths(cfg *config.Config) app.Paths {
	p := app.Paths{Links: cfg.Management.LinksPath}
	if cfg.Management.HALBrowserEnabled() {
		p.HAL = cfg.Management.HALPath
	}
	return p
}

func loadConfig() (*config.Config, error) {
	return config.LoadWithFallback(bootstrap.ResolveConfigPath(cfgFile))
}
