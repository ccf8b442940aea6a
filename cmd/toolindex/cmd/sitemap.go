package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/toolindex/internal/config"
	"github.com/agentstation/toolindex/internal/sitemap"
	"github.com/agentstation/toolindex/pkg/catalog"
)

var sitemapFlags struct {
	baseURL string
	dryRun  bool
}

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Build and publish XML sitemaps",
	Long: `Build the sitemap set from the current catalog (static pages, tools,
categories, comparisons, plus an index) and publish it to storage. Tools
in the exclusion tier are left out.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		baseURL := sitemapFlags.baseURL
		if baseURL == "" {
			baseURL = config.GetStringDefault(config.KeyBaseURL, "http://localhost:8080")
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		doc, err := catalog.Load(ctx, store)
		if err != nil {
			return err
		}

		if sitemapFlags.dryRun {
			blobs, err := sitemap.Build(doc, baseURL)
			if err != nil {
				return err
			}
			for name, blob := range blobs {
				fmt.Printf("%-28s %6d bytes  %s\n", name, len(blob), sitemap.Describe(name))
			}
			return nil
		}

		if err := sitemap.Publish(ctx, store, doc, baseURL); err != nil {
			return err
		}
		fmt.Printf("Published sitemaps under %s\n", sitemap.Prefix)
		return nil
	},
}

func init() {
	sitemapCmd.Flags().StringVar(&sitemapFlags.baseURL, "base-url", "", "site base URL for sitemap entries")
	sitemapCmd.Flags().BoolVar(&sitemapFlags.dryRun, "dry-run", false, "build sitemaps without publishing")
	rootCmd.AddCommand(sitemapCmd)
}
