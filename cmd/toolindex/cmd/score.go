package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/agentstation/toolindex/pkg/catalog"
	"github.com/agentstation/toolindex/pkg/errors"
	"github.com/agentstation/toolindex/pkg/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score [tool-id]",
	Short: "Compute importance scores",
	Long: `Score every tool from its stored metrics, or a single tool by ID,
and print the results ranked by score. Scoring here uses the metrics
already in the document; run maintain to refresh them first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore()
		if err != nil {
			return err
		}
		doc, err := catalog.Load(ctx, store)
		if err != nil {
			return err
		}

		tools := doc.Tools
		if len(args) == 1 {
			tool := doc.FindByID(args[0])
			if tool == nil {
				return fmt.Errorf("tool %q: %w", args[0], errors.ErrNotFound)
			}
			tools = []*catalog.Tool{tool}
		}

		type row struct {
			name  string
			score int
		}
		rows := make([]row, 0, len(tools))
		for _, tool := range tools {
			rows = append(rows, row{tool.Name, scoring.Score(tool, tool.External, nil)})
		}
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].score > rows[j].score })

		for _, r := range rows {
			fmt.Printf("%4d  %s\n", r.score, r.name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
