package model

import "time"

// AnalysisKind selects which model prompt and result schema a request uses
type AnalysisKind string

const (
	KindSearch     AnalysisKind = "search"
	KindSummary    AnalysisKind = "summary"
	KindCompliance AnalysisKind = "compliance"
	KindTracking   AnalysisKind = "tracking"
)

// Valid reports whether k is one of the supported analysis kinds
func (k AnalysisKind) Valid() bool {
	switch k {
	case KindSearch, KindSummary, KindCompliance, KindTracking:
		return true
	}
	return false
}

// SortOrder controls how an AggregatedView is ordered
type SortOrder string

const (
	SortByRelevance  SortOrder = "relevance"  // relevance_score descending
	SortByImpact     SortOrder = "impact"     // impact level, then relevance
	SortByDate       SortOrder = "date"       // publication date ascending (timeline)
	SortByImportance SortOrder = "importance" // High > Medium > Low, then relevance
)

// AnalysisRequest describes one user action. It is consumed once by the
// orchestrator and not persisted.
type AnalysisRequest struct {
	Kind      AnalysisKind `json:"kind"`
	QueryText string       `json:"query_text"`

	// Sectors applies to compliance requests only
	Sectors []string `json:"sectors,omitempty"`

	// Threshold drops results scoring below it after extraction.
	// This is a post-filter: borderline documents are still scored once,
	// so re-running with a different threshold hits the cache.
	Threshold float64 `json:"threshold"`

	SortOrder SortOrder `json:"sort_order"`
	Page      int       `json:"page"`
	PageSize  int       `json:"page_size"`

	// Optional publication-date window applied before candidate selection
	DateFrom time.Time `json:"date_from,omitempty"`
	DateTo   time.Time `json:"date_to,omitempty"`
}

// ModelQuery is one (document, request) unit of model work
type ModelQuery struct {
	DocumentID string       `json:"document_id"`
	Kind       AnalysisKind `json:"kind"`
	QueryText  string       `json:"query_text"`
	PromptText string       `json:"prompt_text"`
	CacheKey   string       `json:"cache_key"`
}
