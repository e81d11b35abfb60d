// Package pipeline coordinates the full analysis flow: candidate
// selection, bounded-concurrency model calls, extraction, filtering and
// aggregation.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/reglens/reglens/internal/aggregate"
	"github.com/reglens/reglens/internal/cache"
	"github.com/reglens/reglens/internal/corpus"
	"github.com/reglens/reglens/internal/extract"
	"github.com/reglens/reglens/internal/gateway"
	"github.com/reglens/reglens/internal/match"
	"github.com/reglens/reglens/internal/model"
	"github.com/reglens/reglens/internal/prompt"
	"github.com/reglens/reglens/internal/worker"
)

// Orchestrator runs analysis requests end to end. A new request
// supersedes any in-flight one: the old run's jobs are abandoned and
// their results discarded, never folded into the new view.
type Orchestrator struct {
	store     *corpus.Store
	matcher   *match.Matcher
	gateway   *gateway.Gateway
	extractor *extract.Extractor
	config    *model.Config

	// progress of the current run
	completed atomic.Int64
	total     atomic.Int64

	// monotonically increasing result sequence across runs, so the
	// aggregator can always pick the later result on dedup
	seq atomic.Uint64

	mu         sync.Mutex
	cancelPrev context.CancelFunc

	// Verbose progress sink; nil silences it
	Log io.Writer
}

// New wires an orchestrator from configuration. The capability is
// injected so tests and alternative model backends can swap it.
func New(store *corpus.Store, capability gateway.Capability, cfg *model.Config) *Orchestrator {
	var responseCache cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			responseCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		} else {
			responseCache = cache.NewMemoryCache(cfg.Cache.MemoryTTL, cfg.Cache.MemoryTTL)
		}
	}

	limiter := worker.NewLimiter(cfg.Model.RequestsPerSecond, cfg.Model.Burst)

	return &Orchestrator{
		store:     store,
		matcher:   match.NewMatcher(),
		gateway:   gateway.New(capability, responseCache, limiter, cfg.Model),
		extractor: extract.NewExtractor(),
		config:    cfg,
	}
}

// Progress reports (completed, total) for the current run. Safe to poll
// from another goroutine while Run is executing.
func (o *Orchestrator) Progress() (completed, total int) {
	return int(o.completed.Load()), int(o.total.Load())
}

// Run executes one analysis request and returns the aggregated view.
// Per-document model failures become fallback results; only corpus-level
// failures and cancellation abort the request.
func (o *Orchestrator) Run(ctx context.Context, req model.AnalysisRequest) (*model.AggregatedView, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("unknown analysis kind %q", req.Kind)
	}
	if o.store.Count() == 0 {
		return nil, &corpus.ErrUnavailable{Err: fmt.Errorf("no documents loaded")}
	}

	// Supersede any in-flight run
	runCtx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	if o.cancelPrev != nil {
		o.cancelPrev()
	}
	o.cancelPrev = cancel
	o.mu.Unlock()
	defer cancel()

	docs := o.store.FilterByDate(req.DateFrom, req.DateTo)
	candidates := o.selectCandidates(req, docs)

	o.completed.Store(0)
	o.total.Store(int64(len(candidates)))

	results, err := o.analyze(runCtx, req, candidates)
	if err != nil {
		return nil, err
	}

	// Post-filter: every candidate was scored once, so changing the
	// threshold on a re-run reuses cached responses. Fallback results
	// carry a zero score and are dropped like any other low scorer.
	filtered := results[:0:0]
	for _, r := range results {
		if r.RelevanceScore >= req.Threshold {
			filtered = append(filtered, r)
		}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = o.config.Analysis.PageSize
	}
	order := req.SortOrder
	if order == "" {
		order = defaultOrder(req.Kind)
	}

	return aggregate.Build(filtered, req.Kind, req.QueryText, order, req.Page, pageSize), nil
}

// selectCandidates picks which documents are worth a model call. Summary
// requests without a query cover the most recent documents instead of
// matching.
func (o *Orchestrator) selectCandidates(req model.AnalysisRequest, docs []model.DocumentRecord) []model.DocumentRecord {
	max := o.config.Matcher.MaxCandidates

	if req.Kind == model.KindSummary && req.QueryText == "" {
		if len(docs) > max {
			docs = docs[:max]
		}
		return docs
	}

	scored := o.matcher.Candidates(req.QueryText, docs, max)
	out := make([]model.DocumentRecord, 0, len(scored))
	for _, c := range scored {
		if doc, ok := o.store.Get(c.DocumentID); ok {
			out = append(out, doc)
		}
	}
	return out
}

// analyze processes candidates in bounded batches through the worker
// pool, updating progress after each batch
func (o *Orchestrator) analyze(ctx context.Context, req model.AnalysisRequest, candidates []model.DocumentRecord) ([]model.AnalysisResult, error) {
	batchSize := o.config.Concurrency.BatchSize
	if batchSize <= 0 {
		batchSize = len(candidates)
	}

	var results []model.AnalysisResult
	for start := 0; start < len(candidates); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("request superseded or cancelled: %w", err)
		}

		end := start + batchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		pool := worker.NewPool(ctx, o.config.Concurrency.Ceiling)
		pool.Start()
		for _, doc := range candidates[start:end] {
			pool.Submit(&analysisJob{orch: o, req: req, doc: doc})
		}

		batchResults := pool.Wait()

		// A superseded run must not fold its late batch into the counters
		// the new run has already reset
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("request superseded or cancelled: %w", err)
		}

		for _, res := range batchResults {
			jr := res.(*jobResult)
			results = append(results, jr.result)
			o.completed.Add(1)

			// Invalid-request failures usually mean a bad key or model
			// name, worth flagging even though the run continues
			if o.Log != nil && jr.result.ErrorKind == model.ErrModelRequestInvalid {
				fmt.Fprintf(o.Log, "warning: model rejected the request for %s (check API key and model name)\n", jr.result.DocumentID)
			}
		}

		if o.Log != nil {
			done, total := o.Progress()
			fmt.Fprintf(o.Log, "analyzed %d/%d documents\n", done, total)
		}
	}

	return results, nil
}

func defaultOrder(kind model.AnalysisKind) model.SortOrder {
	switch kind {
	case model.KindCompliance:
		return model.SortByImpact
	case model.KindTracking:
		return model.SortByDate
	default:
		return model.SortByRelevance
	}
}

// analysisJob is one (document, request) unit of model work. Its
// lifecycle is pending while queued, dispatched while Execute runs, and
// completed once a result exists; a fallback result still completes the
// job, only corpus failures and cancellation abort a whole request.
type analysisJob struct {
	orch *Orchestrator
	req  model.AnalysisRequest
	doc  model.DocumentRecord
}

type jobResult struct {
	result model.AnalysisResult
}

func (r *jobResult) GetError() error { return nil }

func (j *analysisJob) Execute(ctx context.Context) worker.Result {
	query := model.ModelQuery{
		DocumentID: j.doc.ID,
		Kind:       j.req.Kind,
		QueryText:  j.req.QueryText,
		PromptText: prompt.Build(j.req.Kind, j.doc, j.req.QueryText, j.req.Sectors),
		CacheKey:   cache.Key(j.req.Kind, j.doc.ID, j.req.QueryText, j.orch.config.Model),
	}

	resp := j.orch.gateway.Execute(ctx, query)

	result := j.orch.extractor.Extract(resp, j.req.Kind, j.doc.ID)
	result.Title = j.doc.Title
	result.PublicationDate = j.doc.PublicationDate
	result.Seq = j.orch.seq.Add(1)

	return &jobResult{result: result}
}
