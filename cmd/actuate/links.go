package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artpar/actuate/app"
	"github.com/artpar/actuate/core/formatter"
)

var linksRaw bool

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Print the root links resource",
	Long: `Print the root links resource the server would return, built from
the configuration without starting the server.

Examples:
  actuate links
  actuate links --raw
  actuate links -o json`,
	RunE: runLinks,
}

func init() {
	rootCmd.AddCommand(linksCmd)
	addOutputFlags(linksCmd)
	linksCmd.Flags().BoolVar(&linksRaw, "raw", false, "print the resource as HAL JSON")
}

func runLinks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	res, err := app.BuildRootResource(rootPaths(cfg), cfg.Descriptors(), cfg.Management.ContextPath)
	if err != nil {
		return err
	}

	if linksRaw {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encode resource: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	f, opts, err := outputOptions()
	if err != nil {
		return err
	}
	ds := formatter.Dataset{Kind: "link", Columns: []string{"rel", "href"}}
	for _, l := range res.Links.All() {
		ds.Rows = append(ds.Rows, map[string]any{"rel": l.Rel, "href": l.Href})
	}
	return f.FormatList(cmd.OutOrStdout(), ds, opts)
}
