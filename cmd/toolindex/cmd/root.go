// Package cmd implements the toolindex CLI commands.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agentstation/toolindex/internal/config"
	"github.com/agentstation/toolindex/pkg/logging"
)

var (
	verbose   bool
	quiet     bool
	logFormat string
	logOutput string

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "toolindex",
	Short: "Third-party tool catalog maintenance CLI",
	Long: `Toolindex maintains a catalog of third-party software tools: it
aggregates external metrics, classifies and scores every tool, partitions
the catalog into publication tiers, refreshes stale enriched content, and
keeps canonical slugs stable across renames.`,
	PersistentPreRunE: setupCommand,
	SilenceUsage:      true,
}

// Execute runs the root command with signal-aware context.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Accept underscore flag spellings for muscle-memory compatibility
	// with the older pipeline scripts.
	rootCmd.SetGlobalNormalizationFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto", "log format: auto, json, or console")
	rootCmd.PersistentFlags().StringVar(&logOutput, "log-output", "stderr", "log destination: stderr, stdout, none, or a file path")
}

func setupCommand(_ *cobra.Command, _ []string) error {
	config.Init()

	cfg := logging.DefaultConfig()
	cfg.Format = logFormat
	cfg.Output = logOutput
	switch {
	case verbose:
		cfg.Level = "debug"
	case quiet:
		cfg.Level = "warn"
	}
	logging.Configure(cfg)
	return nil
}
