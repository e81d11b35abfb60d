package cli

import (
	"github.com/reglens/reglens/internal/model"
	"github.com/spf13/cobra"
)

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize [query]",
	Short: "Summarize documents matching a query, or the most recent ones",
	Long: `Summarize produces a structured summary per document: type, main
purpose, key points, covered topics and an importance grade.

With a query, candidates are selected by lexical match. Without one,
the most recently published documents are summarized.

Example:
  reglens summarize
  reglens summarize "digital markets" --max-candidates 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		return runAnalysis(model.KindSummary, query, nil)
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	addAnalysisFlags(summarizeCmd)
}
