// Package prompt builds the per-kind model prompts. Every prompt demands
// a strict JSON object so the extractor can validate against a fixed
// schema; the model is told to report absence explicitly rather than
// guess.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/reglens/reglens/internal/model"
)

// Document text is truncated before prompting to bound token cost.
const maxDocumentChars = 4000

const systemMessage = "You are a precise legal document analyzer. " +
	"Extract only information explicitly stated in the text. Never infer or guess. " +
	"Respond with a single JSON object and nothing else."

// System returns the system message sent with every analysis request
func System() string {
	return systemMessage
}

// Build renders the prompt for a (kind, document, query) triple
func Build(kind model.AnalysisKind, doc model.DocumentRecord, queryText string, sectors []string) string {
	text := truncate(doc.FullText, maxDocumentChars)

	switch kind {
	case model.KindSearch:
		return searchPrompt(queryText, text)
	case model.KindSummary:
		return summaryPrompt(text)
	case model.KindCompliance:
		return compliancePrompt(sectors, text)
	case model.KindTracking:
		return trackingPrompt(queryText, text)
	}
	return ""
}

// truncate cuts text to at most max bytes on a rune boundary, so a
// multi-byte character straddling the limit is dropped whole rather
// than sent to the model as a mangled byte.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func searchPrompt(query, text string) string {
	return fmt.Sprintf(`Score how relevant this legal document is to the query: %q

DOCUMENT TEXT:
%s

Return JSON:
{
  "relevance_score": 0.0 to 1.0,
  "confidence": 0.0 to 1.0,
  "explanation": "one sentence on why the document does or does not match",
  "matching_concepts": ["concepts shared between query and document"],
  "relevant_excerpts": ["up to 3 quotes, max 50 words each"]
}

If the document is unrelated, return relevance_score 0.0 and empty lists.`, query, text)
}

func summaryPrompt(text string) string {
	return fmt.Sprintf(`Summarize this legal document.

DOCUMENT TEXT:
%s

Return JSON:
{
  "relevance_score": 0.0 to 1.0,
  "confidence": 0.0 to 1.0,
  "document_type": "Regulation|Directive|Decision|Communication|Recommendation|Opinion|Other",
  "main_purpose": "one sentence",
  "key_points": ["up to 3 points, max 20 words each"],
  "topics": ["up to 2 legal domains covered"],
  "importance": "High|Medium|Low"
}

Use "Not specified" where the text does not state something.`, text)
}

func compliancePrompt(sectors []string, text string) string {
	sectorList := strings.Join(sectors, ", ")
	if sectorList == "" {
		sectorList = "any business sector"
	}
	return fmt.Sprintf(`Assess the compliance impact of this legal document on: %s

DOCUMENT TEXT:
%s

Return JSON:
{
  "relevance_score": 0.0 to 1.0,
  "confidence": 0.0 to 1.0,
  "impact_level": "High|Medium|Low",
  "requirements": ["compliance obligations explicitly stated"],
  "deadlines": ["deadlines explicitly mentioned"],
  "complexity": "Low|Medium|High"
}

Only list obligations and deadlines written in the text.`, sectorList, text)
}

func trackingPrompt(topic, text string) string {
	return fmt.Sprintf(`Determine how this document relates to the regulation/topic: %q

DOCUMENT TEXT:
%s

Return JSON:
{
  "relevance_score": 0.0 to 1.0,
  "confidence": 0.0 to 1.0,
  "relationship": "DirectMention|Implementation|Amendment|Related",
  "temporal_references": ["dates or deadlines tied to the topic"],
  "evolution_indicator": "New Introduction|Amendment|Clarification|Extension|None",
  "importance": 0.0 to 1.0
}

If the document does not mention or relate to the topic, return
relevance_score 0.0 and relationship "Related".`, topic, text)
}
