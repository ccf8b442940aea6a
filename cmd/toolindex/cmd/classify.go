package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/toolindex/pkg/catalog"
	"github.com/agentstation/toolindex/pkg/classify"
	"github.com/agentstation/toolindex/pkg/errors"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [tool-id]",
	Short: "Classify tools by content type",
	Long: `Classify every tool in the catalog, or a single tool by ID, and
print the detected type, confidence, and recommended content sections.
Classification is read-only; use maintain to persist results.`,
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

		for _, tool := range tools {
			result := classify.Classify(tool)
			fmt.Printf("%-30s %-16s %.2f  [%s]\n",
				tool.Name, result.Type, result.Confidence,
				strings.Join(result.Sections, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
