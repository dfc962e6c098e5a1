package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/actuate/config"
	"github.com/artpar/actuate/core/formatter"
	"github.com/artpar/actuate/domain/link"
)

var (
	outputFormat string
	noHeader     bool
	columnsFlag  string
)

var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List the built-in endpoints",
	Long: `List every built-in endpoint with its path, href and flags,
as resolved from the configuration.

Examples:
  actuate endpoints
  actuate endpoints -o yaml
  actuate endpoints --columns type,href`,
	RunE: runEndpoints,
}

func init() {
	rootCmd.AddCommand(endpointsCmd)
	addOutputFlags(endpointsCmd)
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format ("+strings.Join(formatter.List(), ", ")+")")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "omit the table header")
	cmd.Flags().StringVar(&columnsFlag, "columns", "", "comma-separated columns to show")
}

func outputOptions() (formatter.Formatter, formatter.FormatOptions, error) {
	f, ok := formatter.Get(outputFormat)
	if !ok {
		return nil, formatter.FormatOptions{}, fmt.Errorf("unknown output format %q (available: %s)", outputFormat, strings.Join(formatter.List(), ", "))
	}
	opts := formatter.FormatOptions{NoHeader: noHeader}
	if columnsFlag != "" {
		for _, c := range strings.Split(columnsFlag, ",") {
			if c = strings.TrimSpace(c); c != "" {
				opts.Columns = append(opts.Columns, c)
			}
		}
	}
	return f, opts, nil
}

func runEndpoints(cmd *cobra.Command, args []string) error {
	f, opts, err := outputOptions()
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ds := formatter.Dataset{
		Kind:    "endpoint",
		Columns: []string{"type", "path", "href", "enabled", "sensitive"},
	}
	for _, t := range config.EndpointTypes() {
		d, enabled := cfg.Endpoint(t)
		href, err := link.Href(cfg.Management.ContextPath, d.Path)
		if err != nil {
			return fmt.Errorf("endpoint %s: %w", t, err)
		}
		ds.Rows = append(ds.Rows, map[string]any{
			"type":      d.Type,
			"path":      d.Path,
			"href":      href,
			"enabled":   enabled,
			"sensitive": d.Sensitive,
		})
	}
	return f.FormatList(cmd.OutOrStdout(), ds, opts)
}
