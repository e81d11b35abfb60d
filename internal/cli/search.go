package cli

import (
	"github.com/reglens/reglens/internal/model"
	"github.com/spf13/cobra"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find documents relevant to a natural-language query",
	Long: `Search scores corpus documents against a natural-language query.

A cheap lexical match selects candidate documents first; only those are
sent to the model, which scores each one and explains the match.

Example:
  reglens search "data protection obligations for controllers"
  reglens search "state aid" --from 2020-01-01 --threshold 0.5
  reglens search "emission limits" --json results.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalysis(model.KindSearch, args[0], nil)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	addAnalysisFlags(searchCmd)
}
