// Package extract turns raw model text into typed analysis results.
// Model output is untrusted: every field passes schema validation, out
// of range scores are clamped, and any failure yields a fallback result
// instead of an error. Nothing escapes this boundary.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/reglens/reglens/internal/model"
)

// Extractor validates model responses against per-kind schemas
type Extractor struct{}

// NewExtractor creates an extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// payload is the superset of fields the per-kind prompts may return
type payload struct {
	RelevanceScore *float64 `json:"relevance_score"`
	Confidence     *float64 `json:"confidence"`

	// search
	Explanation      string   `json:"explanation"`
	MatchingConcepts []string `json:"matching_concepts"`
	RelevantExcerpts []string `json:"relevant_excerpts"`

	// summary
	DocumentType string   `json:"document_type"`
	MainPurpose  string   `json:"main_purpose"`
	KeyPoints    []string `json:"key_points"`
	Topics       []string `json:"topics"`

	// compliance
	ImpactLevel  string   `json:"impact_level"`
	Requirements []string `json:"requirements"`
	Deadlines    []string `json:"deadlines"`
	Complexity   string   `json:"complexity"`

	// tracking
	Relationship       string          `json:"relationship"`
	TemporalReferences []string        `json:"temporal_references"`
	EvolutionIndicator string          `json:"evolution_indicator"`
	Importance         json.RawMessage `json:"importance"`
}

// Extract produces an AnalysisResult for one document. RelevanceScore
// and Confidence are always present; on a failed response or malformed
// output they are zero and FallbackUsed is set.
func (e *Extractor) Extract(resp model.ModelResponse, kind model.AnalysisKind, documentID string) model.AnalysisResult {
	if !resp.Success {
		return fallback(documentID, kind, resp.ErrorKind)
	}

	var p payload
	if err := json.Unmarshal([]byte(trimFence(resp.RawText)), &p); err != nil {
		return fallback(documentID, kind, model.ErrExtractionFailed)
	}

	if p.RelevanceScore == nil {
		return fallback(documentID, kind, model.ErrExtractionFailed)
	}

	result := model.AnalysisResult{
		DocumentID:     documentID,
		Kind:           kind,
		RelevanceScore: clamp01(*p.RelevanceScore),
		Confidence:     clamp01(deref(p.Confidence)),
	}

	switch kind {
	case model.KindSearch:
		result.Fields.Search = &model.SearchFields{
			Explanation:      p.Explanation,
			MatchingConcepts: p.MatchingConcepts,
			RelevantExcerpts: p.RelevantExcerpts,
		}

	case model.KindSummary:
		importance, ok := parseImpact(stringImportance(p.Importance), model.ImpactMedium)
		if !ok {
			return fallback(documentID, kind, model.ErrExtractionFailed)
		}
		result.Fields.Summary = &model.SummaryFields{
			DocumentType: p.DocumentType,
			MainPurpose:  p.MainPurpose,
			KeyPoints:    p.KeyPoints,
			Topics:       p.Topics,
			Importance:   importance,
		}

	case model.KindCompliance:
		impact, ok := parseImpact(p.ImpactLevel, "")
		if !ok || impact == "" {
			return fallback(documentID, kind, model.ErrExtractionFailed)
		}
		complexity, ok := parseImpact(p.Complexity, model.ImpactMedium)
		if !ok {
			return fallback(documentID, kind, model.ErrExtractionFailed)
		}
		result.Fields.Compliance = &model.ComplianceFields{
			ImpactLevel:  impact,
			Requirements: p.Requirements,
			Deadlines:    p.Deadlines,
			Complexity:   complexity,
		}

	case model.KindTracking:
		rel, ok := parseRelationship(p.Relationship)
		if !ok {
			return fallback(documentID, kind, model.ErrExtractionFailed)
		}
		var importance float64
		if len(p.Importance) > 0 {
			if err := json.Unmarshal(p.Importance, &importance); err != nil {
				importance = 0
			}
		}
		result.Fields.Tracking = &model.TrackingFields{
			Relationship:       rel,
			TemporalReferences: p.TemporalReferences,
			EvolutionIndicator: p.EvolutionIndicator,
			Importance:         clamp01(importance),
		}

	default:
		return fallback(documentID, kind, model.ErrExtractionFailed)
	}

	return result
}

func fallback(documentID string, kind model.AnalysisKind, errKind model.ErrorKind) model.AnalysisResult {
	if errKind == model.ErrNone {
		errKind = model.ErrExtractionFailed
	}
	return model.AnalysisResult{
		DocumentID:     documentID,
		Kind:           kind,
		RelevanceScore: 0.0,
		Confidence:     0.0,
		FallbackUsed:   true,
		ErrorKind:      errKind,
	}
}

// clamp01 forces a score into [0,1]; out-of-range values are clamped,
// not rejected
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// parseImpact validates a High/Medium/Low value. An empty input maps to
// the given default; anything else outside the enum is a schema
// violation.
func parseImpact(s string, def model.ImpactLevel) (model.ImpactLevel, bool) {
	switch strings.TrimSpace(s) {
	case "":
		return def, true
	case string(model.ImpactHigh):
		return model.ImpactHigh, true
	case string(model.ImpactMedium):
		return model.ImpactMedium, true
	case string(model.ImpactLow):
		return model.ImpactLow, true
	}
	return "", false
}

func parseRelationship(s string) (model.Relationship, bool) {
	switch strings.TrimSpace(s) {
	case "", string(model.RelRelated), "Related topic", "Reference", "None":
		return model.RelRelated, true
	case string(model.RelDirectMention), "Direct mention":
		return model.RelDirectMention, true
	case string(model.RelImplementation):
		return model.RelImplementation, true
	case string(model.RelAmendment):
		return model.RelAmendment, true
	}
	return "", false
}

// stringImportance handles summary prompts returning importance as a
// bare string ("High") rather than a number
func stringImportance(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// trimFence strips markdown code fences some models wrap around JSON
func trimFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
