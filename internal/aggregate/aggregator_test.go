package aggregate

import (
	"reflect"
	"testing"
	"time"

	"github.com/reglens/reglens/internal/model"
)

func searchResult(id string, score float64, seq uint64) model.AnalysisResult {
	return model.AnalysisResult{
		DocumentID:     id,
		Kind:           model.KindSearch,
		RelevanceScore: score,
		Confidence:     score,
		Seq:            seq,
		Fields:         model.ResultFields{Search: &model.SearchFields{}},
	}
}

func TestBuild_SortsByRelevanceWithIDTiebreak(t *testing.T) {
	results := []model.AnalysisResult{
		searchResult("c", 0.5, 1),
		searchResult("a", 0.9, 2),
		searchResult("b", 0.5, 3),
	}

	view := Build(results, model.KindSearch, "q", model.SortByRelevance, 0, 10)

	got := []string{view.Results[0].DocumentID, view.Results[1].DocumentID, view.Results[2].DocumentID}
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected order %v, got %v", want, got)
	}
}

func TestBuild_OrderIndependentOfArrival(t *testing.T) {
	forward := []model.AnalysisResult{
		searchResult("a", 0.9, 1),
		searchResult("b", 0.5, 2),
	}
	reversed := []model.AnalysisResult{
		searchResult("b", 0.5, 1),
		searchResult("a", 0.9, 2),
	}

	v1 := Build(forward, model.KindSearch, "q", model.SortByRelevance, 0, 10)
	v2 := Build(reversed, model.KindSearch, "q", model.SortByRelevance, 0, 10)

	if v1.Results[0].DocumentID != v2.Results[0].DocumentID {
		t.Error("view ordering must not depend on result arrival order")
	}
}

func TestBuild_DedupeLaterWins(t *testing.T) {
	stale := searchResult("a", 0.2, 1)
	stale.FallbackUsed = true
	fresh := searchResult("a", 0.8, 2)

	view := Build([]model.AnalysisResult{stale, fresh}, model.KindSearch, "q", model.SortByRelevance, 0, 10)

	if view.TotalRows != 1 {
		t.Fatalf("expected 1 deduplicated row, got %d", view.TotalRows)
	}
	if view.Results[0].RelevanceScore != 0.8 || view.Results[0].FallbackUsed {
		t.Errorf("later-produced result should win: %+v", view.Results[0])
	}
}

func TestBuild_PaginationIsPure(t *testing.T) {
	var results []model.AnalysisResult
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		results = append(results, searchResult(id, float64(10-i)/10, uint64(i)))
	}

	p0 := Build(results, model.KindSearch, "q", model.SortByRelevance, 0, 2)
	p0again := Build(results, model.KindSearch, "q", model.SortByRelevance, 0, 2)
	p1 := Build(results, model.KindSearch, "q", model.SortByRelevance, 1, 2)
	p2 := Build(results, model.KindSearch, "q", model.SortByRelevance, 2, 2)
	p9 := Build(results, model.KindSearch, "q", model.SortByRelevance, 9, 2)

	if !reflect.DeepEqual(p0.Results, p0again.Results) {
		t.Error("rebuilding the same page must yield identical output")
	}
	if len(p0.Results) != 2 || len(p1.Results) != 2 || len(p2.Results) != 1 {
		t.Errorf("unexpected page sizes: %d/%d/%d", len(p0.Results), len(p1.Results), len(p2.Results))
	}
	if len(p9.Results) != 0 {
		t.Errorf("out-of-range page should be empty, got %d rows", len(p9.Results))
	}

	// Changing only the page never changes per-item scores
	if p1.Results[0].RelevanceScore != 0.8 {
		t.Errorf("pagination altered scores: %f", p1.Results[0].RelevanceScore)
	}
	if p0.TotalRows != 5 || p1.TotalRows != 5 {
		t.Error("TotalRows must be the full sorted length on every page")
	}
}

func TestBuild_ImpactSort(t *testing.T) {
	compliance := func(id string, level model.ImpactLevel, score float64) model.AnalysisResult {
		return model.AnalysisResult{
			DocumentID:     id,
			Kind:           model.KindCompliance,
			RelevanceScore: score,
			Fields: model.ResultFields{
				Compliance: &model.ComplianceFields{ImpactLevel: level},
			},
		}
	}

	results := []model.AnalysisResult{
		compliance("low", model.ImpactLow, 0.9),
		compliance("high", model.ImpactHigh, 0.4),
		compliance("med-b", model.ImpactMedium, 0.6),
		compliance("med-a", model.ImpactMedium, 0.8),
	}

	view := Build(results, model.KindCompliance, "q", model.SortByImpact, 0, 10)

	var got []string
	for _, r := range view.Results {
		got = append(got, r.DocumentID)
	}
	want := []string{"high", "med-a", "med-b", "low"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected impact order %v, got %v", want, got)
	}
}

func TestBuild_DateSortForTimeline(t *testing.T) {
	tracking := func(id string, year int) model.AnalysisResult {
		return model.AnalysisResult{
			DocumentID:      id,
			Kind:            model.KindTracking,
			RelevanceScore:  0.5,
			PublicationDate: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
			Fields: model.ResultFields{
				Tracking: &model.TrackingFields{Relationship: model.RelRelated, Importance: 0.5},
			},
		}
	}

	results := []model.AnalysisResult{
		tracking("c", 2024),
		tracking("a", 2016),
		tracking("b", 2020),
	}

	view := Build(results, model.KindTracking, "q", model.SortByDate, 0, 10)

	if view.Results[0].DocumentID != "a" || view.Results[2].DocumentID != "c" {
		t.Errorf("timeline must be chronological, got %s..%s",
			view.Results[0].DocumentID, view.Results[2].DocumentID)
	}

	// Yearly buckets for the temporal distribution
	if view.Stats.ByYear[2016] != 1 || view.Stats.ByYear[2020] != 1 || view.Stats.ByYear[2024] != 1 {
		t.Errorf("unexpected year buckets: %v", view.Stats.ByYear)
	}
}

func TestBuild_Stats(t *testing.T) {
	ok := searchResult("a", 0.8, 1)
	zero := searchResult("b", 0.0, 2)
	fb := searchResult("c", 0.0, 3)
	fb.FallbackUsed = true

	view := Build([]model.AnalysisResult{ok, zero, fb}, model.KindSearch, "q", model.SortByRelevance, 0, 10)

	s := view.Stats
	if s.Analyzed != 3 || s.Relevant != 1 || s.FallbackCount != 1 {
		t.Errorf("unexpected stats: %+v", s)
	}
	if s.AvgRelevance < 0.26 || s.AvgRelevance > 0.27 {
		t.Errorf("unexpected avg relevance: %f", s.AvgRelevance)
	}
}
