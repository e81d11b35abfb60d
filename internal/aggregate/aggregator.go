// Package aggregate folds per-document analysis results into
// consumer-ready views: deduplicated, deterministically sorted,
// paginated, with derived statistics. Views are immutable; every rebuild
// returns a new value.
package aggregate

import (
	"sort"

	"github.com/reglens/reglens/internal/model"
)

// Build constructs an AggregatedView from a full result set. The input
// slice is never mutated. Ordering is independent of the arrival order
// of results: sorting happens here, after all results are collected.
func Build(results []model.AnalysisResult, kind model.AnalysisKind, query string, order model.SortOrder, page, pageSize int) *model.AggregatedView {
	rows := dedupe(results)
	sortRows(rows, order)

	if pageSize <= 0 {
		pageSize = 10
	}
	if page < 0 {
		page = 0
	}

	view := &model.AggregatedView{
		Kind:      kind,
		Query:     query,
		SortOrder: order,
		Page:      page,
		PageSize:  pageSize,
		TotalRows: len(rows),
		Results:   paginate(rows, page, pageSize),
		Stats:     stats(rows),
	}
	return view
}

// dedupe keeps the later-produced result when two share (document, kind),
// which happens on re-runs with a partially warm cache
func dedupe(results []model.AnalysisResult) []model.AnalysisResult {
	type key struct {
		doc  string
		kind model.AnalysisKind
	}

	best := make(map[key]model.AnalysisResult, len(results))
	for _, r := range results {
		k := key{doc: r.DocumentID, kind: r.Kind}
		if prev, ok := best[k]; ok && prev.Seq >= r.Seq {
			continue
		}
		best[k] = r
	}

	out := make([]model.AnalysisResult, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	return out
}

// sortRows applies the requested order. Every order falls through to
// document id ascending so the final sequence is deterministic.
func sortRows(rows []model.AnalysisResult, order model.SortOrder) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch order {
		case model.SortByDate:
			if !a.PublicationDate.Equal(b.PublicationDate) {
				return a.PublicationDate.Before(b.PublicationDate)
			}
		case model.SortByImpact:
			ra, rb := impactRank(a), impactRank(b)
			if ra != rb {
				return ra > rb
			}
			if a.RelevanceScore != b.RelevanceScore {
				return a.RelevanceScore > b.RelevanceScore
			}
		case model.SortByImportance:
			ra, rb := importanceRank(a), importanceRank(b)
			if ra != rb {
				return ra > rb
			}
			if a.RelevanceScore != b.RelevanceScore {
				return a.RelevanceScore > b.RelevanceScore
			}
		default: // SortByRelevance
			if a.RelevanceScore != b.RelevanceScore {
				return a.RelevanceScore > b.RelevanceScore
			}
		}
		return a.DocumentID < b.DocumentID
	})
}

// paginate is a pure slice of the sorted sequence; it never re-sorts or
// re-scores
func paginate(rows []model.AnalysisResult, page, pageSize int) []model.AnalysisResult {
	start := page * pageSize
	if start >= len(rows) {
		return []model.AnalysisResult{}
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	out := make([]model.AnalysisResult, end-start)
	copy(out, rows[start:end])
	return out
}

func impactRank(r model.AnalysisResult) int {
	if r.Fields.Compliance != nil {
		return r.Fields.Compliance.ImpactLevel.Rank()
	}
	return 0
}

func importanceRank(r model.AnalysisResult) int {
	if r.Fields.Summary != nil {
		return r.Fields.Summary.Importance.Rank()
	}
	if r.Fields.Tracking != nil {
		// Bucket the numeric importance so High/Medium/Low sorting holds
		switch {
		case r.Fields.Tracking.Importance > 0.66:
			return 3
		case r.Fields.Tracking.Importance > 0.33:
			return 2
		default:
			return 1
		}
	}
	return 0
}

func stats(rows []model.AnalysisResult) model.ViewStats {
	s := model.ViewStats{
		Analyzed:       len(rows),
		ByImportance:   make(map[string]int),
		ByYear:         make(map[int]int),
		ByRelationship: make(map[string]int),
	}

	var relevanceSum float64
	for _, r := range rows {
		relevanceSum += r.RelevanceScore
		if r.RelevanceScore > 0 {
			s.Relevant++
		}
		if r.FallbackUsed {
			s.FallbackCount++
		}
		if !r.PublicationDate.IsZero() {
			s.ByYear[r.PublicationDate.Year()]++
		}
		rank := importanceRank(r)
		if rank == 0 {
			rank = impactRank(r)
		}
		switch rank {
		case 3:
			s.ByImportance[string(model.ImpactHigh)]++
		case 2:
			s.ByImportance[string(model.ImpactMedium)]++
		case 1:
			s.ByImportance[string(model.ImpactLow)]++
		}
		if r.Fields.Tracking != nil {
			s.ByRelationship[string(r.Fields.Tracking.Relationship)]++
		}
	}

	if len(rows) > 0 {
		s.AvgRelevance = relevanceSum / float64(len(rows))
		s.CoveragePct = float64(s.Relevant) / float64(len(rows)) * 100
	}
	return s
}
