package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reglens/reglens/internal/corpus"
	"github.com/reglens/reglens/internal/model"
)

// corpusCmd represents the corpus command
var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect the document corpus",
}

var corpusInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show corpus size, date range and document types",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := model.DefaultConfig()
		if corpusPath != "" {
			cfg.Corpus.Paths = []string{corpusPath}
		}

		store := corpus.NewStore(cfg.Corpus.Paths)
		if err := store.Open(); err != nil {
			return err
		}

		docs := store.Load()
		byType := map[string]int{}
		for _, d := range docs {
			byType[d.DocType]++
		}

		fmt.Printf("Documents: %d\n", len(docs))
		if len(docs) > 0 {
			// Newest first
			fmt.Printf("Published: %s to %s\n",
				docs[len(docs)-1].PublicationDate.Format("2006-01-02"),
				docs[0].PublicationDate.Format("2006-01-02"))
		}
		fmt.Println("By type:")
		for docType, n := range byType {
			if docType == "" {
				docType = "(unknown)"
			}
			fmt.Printf("  %-20s %d\n", docType, n)
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "Searched paths: %v\n", cfg.Corpus.Paths)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(corpusCmd)
	corpusCmd.AddCommand(corpusInfoCmd)
	corpusInfoCmd.Flags().StringVar(&corpusPath, "corpus", "", "path to the parquet corpus file")
}
