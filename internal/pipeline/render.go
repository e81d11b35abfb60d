package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reglens/reglens/internal/model"
)

// RenderJSON writes the view as indented JSON, to stdout when path is
// empty
func RenderJSON(view *model.AggregatedView, path string) error {
	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding view: %w", err)
	}

	if path == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// RenderText writes a human-readable summary of the view
func RenderText(w io.Writer, view *model.AggregatedView) {
	fmt.Fprintf(w, "%s results for %q (page %d, %d of %d shown)\n",
		view.Kind, view.Query, view.Page+1, len(view.Results), view.TotalRows)
	fmt.Fprintf(w, "sorted by %s\n\n", view.SortOrder)

	for _, r := range view.Results {
		fmt.Fprintf(w, "%s  %s\n", r.DocumentID, r.Title)
		fmt.Fprintf(w, "    published %s  relevance %.2f  confidence %.2f",
			r.PublicationDate.Format("2006-01-02"), r.RelevanceScore, r.Confidence)
		if r.FallbackUsed {
			fmt.Fprintf(w, "  [fallback: %s]", r.ErrorKind)
		}
		fmt.Fprintln(w)

		renderFields(w, r)
		fmt.Fprintln(w)
	}

	renderStats(w, view.Stats)
}

func renderFields(w io.Writer, r model.AnalysisResult) {
	switch {
	case r.Fields.Search != nil:
		f := r.Fields.Search
		if f.Explanation != "" {
			fmt.Fprintf(w, "    %s\n", f.Explanation)
		}
		if len(f.MatchingConcepts) > 0 {
			fmt.Fprintf(w, "    concepts: %s\n", strings.Join(f.MatchingConcepts, "; "))
		}
	case r.Fields.Summary != nil:
		f := r.Fields.Summary
		if f.MainPurpose != "" {
			fmt.Fprintf(w, "    %s\n", f.MainPurpose)
		}
		if len(f.KeyPoints) > 0 {
			fmt.Fprintf(w, "    key points: %s\n", strings.Join(f.KeyPoints, "; "))
		}
		if f.Importance != "" {
			fmt.Fprintf(w, "    importance: %s\n", f.Importance)
		}
	case r.Fields.Compliance != nil:
		f := r.Fields.Compliance
		fmt.Fprintf(w, "    impact: %s  complexity: %s\n", f.ImpactLevel, f.Complexity)
		if len(f.Requirements) > 0 {
			fmt.Fprintf(w, "    requirements: %s\n", strings.Join(f.Requirements, "; "))
		}
		if len(f.Deadlines) > 0 {
			fmt.Fprintf(w, "    deadlines: %s\n", strings.Join(f.Deadlines, "; "))
		}
	case r.Fields.Tracking != nil:
		f := r.Fields.Tracking
		fmt.Fprintf(w, "    relationship: %s  importance %.2f\n", f.Relationship, f.Importance)
		if f.EvolutionIndicator != "" {
			fmt.Fprintf(w, "    %s\n", f.EvolutionIndicator)
		}
	}
}

func renderStats(w io.Writer, s model.ViewStats) {
	fmt.Fprintf(w, "analyzed %d, relevant %d (%.0f%% coverage), avg relevance %.2f\n",
		s.Analyzed, s.Relevant, s.CoveragePct, s.AvgRelevance)
	if s.FallbackCount > 0 {
		fmt.Fprintf(w, "fallback results: %d\n", s.FallbackCount)
	}
	if len(s.ByImportance) > 0 {
		fmt.Fprintf(w, "by importance: High %d, Medium %d, Low %d\n",
			s.ByImportance[string(model.ImpactHigh)],
			s.ByImportance[string(model.ImpactMedium)],
			s.ByImportance[string(model.ImpactLow)])
	}
}
