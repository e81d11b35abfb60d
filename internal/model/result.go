package model

import "time"

// ErrorKind classifies a failed model call or a corpus-level failure
type ErrorKind string

const (
	ErrNone                ErrorKind = ""
	ErrModelUnavailable    ErrorKind = "model_unavailable"     // transient, retried, then surfaced as fallback
	ErrModelRequestInvalid ErrorKind = "model_request_invalid" // non-retriable; likely a configuration problem
	ErrExtractionFailed    ErrorKind = "extraction_failed"     // malformed model output
	ErrCorpusUnavailable   ErrorKind = "corpus_unavailable"    // fatal, aborts the whole request
)

// ModelResponse is the transient outcome of one gateway call
type ModelResponse struct {
	RawText   string    `json:"raw_text"`
	LatencyMS int64     `json:"latency_ms"`
	Success   bool      `json:"success"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	FromCache bool      `json:"from_cache,omitempty"`
}

// ImpactLevel grades compliance impact and implementation complexity
type ImpactLevel string

const (
	ImpactHigh   ImpactLevel = "High"
	ImpactMedium ImpactLevel = "Medium"
	ImpactLow    ImpactLevel = "Low"
)

// Rank orders impact levels for sorting: High=3, Medium=2, Low=1
func (l ImpactLevel) Rank() int {
	switch l {
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	case ImpactLow:
		return 1
	}
	return 0
}

// Relationship classifies how a document relates to a tracked topic
type Relationship string

const (
	RelDirectMention  Relationship = "DirectMention"
	RelImplementation Relationship = "Implementation"
	RelAmendment      Relationship = "Amendment"
	RelRelated        Relationship = "Related"
)

// SearchFields carries kind-specific output for search results
type SearchFields struct {
	Explanation      string   `json:"explanation,omitempty"`
	MatchingConcepts []string `json:"matching_concepts,omitempty"`
	RelevantExcerpts []string `json:"relevant_excerpts,omitempty"`
}

// SummaryFields carries kind-specific output for document summaries
type SummaryFields struct {
	DocumentType string      `json:"document_type,omitempty"`
	MainPurpose  string      `json:"main_purpose,omitempty"`
	KeyPoints    []string    `json:"key_points,omitempty"`
	Topics       []string    `json:"topics,omitempty"`
	Importance   ImpactLevel `json:"importance,omitempty"`
}

// ComplianceFields carries kind-specific output for compliance assessments
type ComplianceFields struct {
	ImpactLevel  ImpactLevel `json:"impact_level,omitempty"`
	Requirements []string    `json:"requirements,omitempty"`
	Deadlines    []string    `json:"deadlines,omitempty"`
	Complexity   ImpactLevel `json:"complexity,omitempty"`
}

// TrackingFields carries kind-specific output for regulatory tracking
type TrackingFields struct {
	Relationship       Relationship `json:"relationship,omitempty"`
	TemporalReferences []string     `json:"temporal_references,omitempty"`
	EvolutionIndicator string       `json:"evolution_indicator,omitempty"`
	Importance         float64      `json:"importance"`
}

// ResultFields is a tagged variant: exactly one member matching the
// result kind is non-nil, except on fallback results where all may be nil.
type ResultFields struct {
	Search     *SearchFields     `json:"search,omitempty"`
	Summary    *SummaryFields    `json:"summary,omitempty"`
	Compliance *ComplianceFields `json:"compliance,omitempty"`
	Tracking   *TrackingFields   `json:"tracking,omitempty"`
}

// AnalysisResult is the typed outcome of analysing one document.
// RelevanceScore and Confidence are always present and within [0,1],
// even when extraction failed (both zero, FallbackUsed set).
type AnalysisResult struct {
	DocumentID      string       `json:"document_id"`
	Kind            AnalysisKind `json:"kind"`
	RelevanceScore  float64      `json:"relevance_score"`
	Confidence      float64      `json:"confidence"`
	Fields          ResultFields `json:"fields"`
	FallbackUsed    bool         `json:"fallback_used"`
	ErrorKind       ErrorKind    `json:"error_kind,omitempty"`
	PublicationDate time.Time    `json:"publication_date,omitempty"`
	Title           string       `json:"title,omitempty"`

	// Seq is assigned in production order; on re-runs with partial cache
	// the aggregator keeps the later result for a duplicated document.
	Seq uint64 `json:"-"`
}

// ViewStats are derived statistics over a full (pre-pagination) result set
type ViewStats struct {
	Analyzed       int            `json:"analyzed"`
	Relevant       int            `json:"relevant"`
	FallbackCount  int            `json:"fallback_count"`
	CoveragePct    float64        `json:"coverage_pct"`
	AvgRelevance   float64        `json:"avg_relevance"`
	ByImportance   map[string]int `json:"by_importance,omitempty"`
	ByYear         map[int]int    `json:"by_year,omitempty"`
	ByRelationship map[string]int `json:"by_relationship,omitempty"`
}

// AggregatedView is a consumer-ready page of results plus statistics.
// It is built fresh per request and never mutated after construction;
// pagination or sort changes produce a new view.
type AggregatedView struct {
	Kind      AnalysisKind     `json:"kind"`
	Query     string           `json:"query"`
	SortOrder SortOrder        `json:"sort_order"`
	Page      int              `json:"page"`
	PageSize  int              `json:"page_size"`
	TotalRows int              `json:"total_rows"`
	Results   []AnalysisResult `json:"results"`
	Stats     ViewStats        `json:"stats"`
}
