package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/agentstation/toolindex/pkg/catalog"
	"github.com/agentstation/toolindex/pkg/errors"
)

var listFlags struct {
	tier     string
	category string
	format   string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog tools",
	Long: `List the tools in the catalog, optionally filtered by tier or
category. Formats: table (default), json, yaml.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := openStore()
		if err != nil {
			return err
		}
		doc, err := catalog.Load(ctx, store)
		if err != nil {
			return err
		}

		var tools []*catalog.Tool
		for _, tool := range doc.Tools {
			if listFlags.tier != "" && tool.Tier != listFlags.tier {
				continue
			}
			if listFlags.category != "" && tool.Category != listFlags.category {
				continue
			}
			tools = append(tools, tool)
		}

		switch listFlags.format {
		case "table":
			fmt.Printf("%-24s %-30s %-8s %5s  %s\n", "ID", "NAME", "TIER", "SCORE", "SLUG")
			for _, tool := range tools {
				fmt.Printf("%-24s %-30s %-8s %5d  %s\n",
					tool.ID, tool.Name, tool.Tier, tool.Score, tool.Slug)
			}
			return nil
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(tools)
		case "yaml":
			out, err := yaml.Marshal(tools)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(out)
			return err
		default:
			return fmt.Errorf("format %q: %w", listFlags.format, errors.ErrInvalidInput)
		}
	},
}

func init() {
	listCmd.Flags().StringVar(&listFlags.tier, "tier", "", "filter by tier")
	listCmd.Flags().StringVar(&listFlags.category, "category", "", "filter by category")
	listCmd.Flags().StringVarP(&listFlags.format, "format", "f", "table", "output format (table, json, yaml)")
	rootCmd.AddCommand(listCmd)
}
