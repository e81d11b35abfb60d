package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/reglens/reglens/internal/corpus"
	"github.com/reglens/reglens/internal/gateway"
	"github.com/reglens/reglens/internal/model"
	"github.com/reglens/reglens/internal/pipeline"
)

var (
	outJSON       string
	corpusPath    string
	modelName     string
	timeout       time.Duration
	threshold     float64
	sortFlag      string
	page          int
	pageSize      int
	dateFrom      string
	dateTo        string
	maxCandidates int
	batchSize     int
	ceiling       int
	noCache       bool
)

// addAnalysisFlags registers the flags shared by all analysis commands
func addAnalysisFlags(cmd *cobra.Command) {
	// Output flags
	cmd.Flags().StringVar(&outJSON, "json", "", "write results as JSON to this path ('-' for stdout)")

	// Corpus flags
	cmd.Flags().StringVar(&corpusPath, "corpus", "", "path to the parquet corpus file")
	cmd.Flags().StringVar(&dateFrom, "from", "", "only documents published on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dateTo, "to", "", "only documents published on or before this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&maxCandidates, "max-candidates", 50, "max documents sent to the model per request")

	// Model flags
	cmd.Flags().StringVar(&modelName, "model", "gpt-4o-mini", "model name")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall request timeout")
	cmd.Flags().IntVar(&batchSize, "batch-size", 25, "documents per batch")
	cmd.Flags().IntVar(&ceiling, "ceiling", 4, "max concurrent model calls")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache (force fresh calls)")

	// Result flags
	cmd.Flags().Float64Var(&threshold, "threshold", 0.3, "drop results scoring below this relevance")
	cmd.Flags().StringVar(&sortFlag, "sort", "", "sort order: relevance, impact, date, importance")
	cmd.Flags().IntVar(&page, "page", 0, "result page (zero-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "results per page")
}

// buildConfig assembles runtime configuration from flags and environment
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if corpusPath != "" {
		cfg.Corpus.Paths = []string{corpusPath}
	}
	cfg.Matcher.MaxCandidates = maxCandidates
	cfg.Model.Name = modelName
	cfg.Concurrency.BatchSize = batchSize
	cfg.Concurrency.Ceiling = ceiling
	cfg.Analysis.RelevanceThreshold = threshold
	cfg.Analysis.PageSize = pageSize
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.JSON = outJSON

	cfg.Model.APIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.Model.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.Model.BaseURL = baseURL
	}

	if cfg.Cache.Enabled {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.Cache.Dir = home + "/.reglens/cache"
		}
	}

	return cfg, nil
}

// buildRequest translates command flags into one AnalysisRequest
func buildRequest(kind model.AnalysisKind, query string, sectors []string) (model.AnalysisRequest, error) {
	req := model.AnalysisRequest{
		Kind:      kind,
		QueryText: query,
		Sectors:   sectors,
		Threshold: threshold,
		SortOrder: model.SortOrder(sortFlag),
		Page:      page,
		PageSize:  pageSize,
	}

	if dateFrom != "" {
		t, err := time.Parse("2006-01-02", dateFrom)
		if err != nil {
			return req, fmt.Errorf("invalid --from date %q: %w", dateFrom, err)
		}
		req.DateFrom = t
	}
	if dateTo != "" {
		t, err := time.Parse("2006-01-02", dateTo)
		if err != nil {
			return req, fmt.Errorf("invalid --to date %q: %w", dateTo, err)
		}
		req.DateTo = t
	}

	return req, nil
}

// runAnalysis executes one analysis request end to end and renders it
func runAnalysis(kind model.AnalysisKind, query string, sectors []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	req, err := buildRequest(kind, query, sectors)
	if err != nil {
		return err
	}

	store := corpus.NewStore(cfg.Corpus.Paths)
	if err := store.Open(); err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d documents\n", store.Count())
	}

	capability, err := gateway.NewOpenAICapability(cfg.Model)
	if err != nil {
		return err
	}

	orch := pipeline.New(store, capability, cfg)
	if verbose {
		orch.Log = os.Stderr
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	view, err := orch.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	switch outJSON {
	case "":
		pipeline.RenderText(os.Stdout, view)
	case "-":
		if err := pipeline.RenderJSON(view, ""); err != nil {
			return err
		}
	default:
		if err := pipeline.RenderJSON(view, outJSON); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", outJSON)
		}
	}

	return nil
}
