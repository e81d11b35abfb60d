package cli

import (
	"github.com/reglens/reglens/internal/model"
	"github.com/spf13/cobra"
)

var sectors []string

// complianceCmd represents the compliance command
var complianceCmd = &cobra.Command{
	Use:   "compliance <query>",
	Short: "Assess compliance impact of matching documents",
	Long: `Compliance assesses what matching documents require of a business:
impact level, explicit obligations, deadlines and implementation
complexity.

Results default to impact-level ordering so High-impact documents
surface first.

Example:
  reglens compliance "payment services" --sector fintech --sector banking
  reglens compliance "packaging waste" --threshold 0.5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalysis(model.KindCompliance, args[0], sectors)
	},
}

func init() {
	rootCmd.AddCommand(complianceCmd)
	addAnalysisFlags(complianceCmd)
	complianceCmd.Flags().StringSliceVar(&sectors, "sector", nil, "business sector to assess against (repeatable)")
}
