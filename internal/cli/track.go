package cli

import (
	"github.com/reglens/reglens/internal/model"
	"github.com/spf13/cobra"
)

// trackCmd represents the track command
var trackCmd = &cobra.Command{
	Use:   "track <regulation-or-topic>",
	Short: "Track how a regulation or topic evolves across the corpus",
	Long: `Track classifies how each matching document relates to a regulation
or topic: direct mention, implementing act, amendment or related
material, with any temporal references found in the text.

Results default to chronological ordering to form a timeline.

Example:
  reglens track "GDPR"
  reglens track "Regulation (EU) 2016/679" --from 2018-01-01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalysis(model.KindTracking, args[0], nil)
	},
}

func init() {
	rootCmd.AddCommand(trackCmd)
	addAnalysisFlags(trackCmd)
}
