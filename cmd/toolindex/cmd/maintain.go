package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/toolindex/internal/maintenance"
	"github.com/agentstation/toolindex/internal/scrape"
)

var maintainFlags struct {
	tier      string
	maxPerRun int
	dryRun    bool
	force     bool
	tiersFile string
}

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Run a full catalog maintenance pass",
	Long: `Run the maintenance pipeline: fetch external metrics, classify and
score every tool, partition into tiers, refresh stale enriched content
within the per-run budget, assign canonical slugs, and persist the result.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := openStore()
		if err != nil {
			return err
		}
		tiers, err := loadTiers(maintainFlags.tiersFile)
		if err != nil {
			return err
		}
		runs, err := openHistory()
		if err != nil {
			return err
		}
		defer runs.Close()

		opts := maintenance.Options{
			Tiers:     tiers,
			Tier:      maintainFlags.tier,
			MaxPerRun: maintainFlags.maxPerRun,
			DryRun:    maintainFlags.dryRun,
			Force:     maintainFlags.force,
		}

		deps := maintenance.Deps{
			Store:   store,
			Metrics: newMetricsClient(),
			Scraper: scrape.New(),
			Runs:    runs,
		}
		// Interface fields must stay untyped-nil when a backend is
		// unconfigured, so nil checks inside the runner still work.
		if t := newTraffic(ctx); t != nil {
			deps.Traffic = t
		}
		if e := newEnhancer(ctx); e != nil {
			deps.Enhancer = e
		}

		runner := maintenance.NewRunner(deps, opts)
		summary, err := runner.Run(ctx)
		if err != nil {
			return err
		}

		printSummary(summary)
		return nil
	},
}

func printSummary(summary *maintenance.Summary) {
	mode := ""
	if summary.DryRun {
		mode = " (dry run)"
	}
	fmt.Printf("Run %s%s\n", summary.RunID, mode)
	fmt.Printf("  tools:    %d\n", summary.Tools)
	fmt.Printf("  scraped:  %d\n", summary.Scraped)
	fmt.Printf("  fetched:  %d\n", summary.Fetched)
	fmt.Printf("  enhanced: %d\n", summary.Enhanced)
	fmt.Printf("  duration: %s\n", summary.Duration.Round(time.Millisecond))

	names := make([]string, 0, len(summary.TierCensus))
	for name := range summary.TierCensus {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %d\n", name, summary.TierCensus[name])
	}
}

func init() {
	maintainCmd.Flags().StringVar(&maintainFlags.tier, "tier", "", "restrict enrichment to one tier")
	maintainCmd.Flags().IntVar(&maintainFlags.maxPerRun, "max-per-run", 0, "cap enriched tools per run (0 = no cap)")
	maintainCmd.Flags().BoolVar(&maintainFlags.dryRun, "dry-run", false, "compute everything, persist nothing")
	maintainCmd.Flags().BoolVar(&maintainFlags.force, "force", false, "treat every tool as stale")
	maintainCmd.Flags().StringVar(&maintainFlags.tiersFile, "tiers-file", "", "tier configuration YAML file")
	rootCmd.AddCommand(maintainCmd)
}
