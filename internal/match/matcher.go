package match

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/reglens/reglens/internal/model"
)

// Matcher is the cheap lexical pre-filter that bounds how many documents
// reach the model. It trades precision for cost: the extractor's
// relevance score is authoritative, this only picks candidates.
type Matcher struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewMatcher creates a matcher with the default English stopword set
func NewMatcher() *Matcher {
	return &Matcher{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Candidate is a scored document id
type Candidate struct {
	DocumentID string
	Score      float64
}

// Candidates scores every document against the query and returns the top
// maxCandidates ids by term overlap, ties broken by more recent
// publication date. The returned order is deterministic.
func (m *Matcher) Candidates(queryText string, docs []model.DocumentRecord, maxCandidates int) []Candidate {
	queryTerms := m.termSet(queryText)
	if len(queryTerms) == 0 || maxCandidates <= 0 {
		return nil
	}

	type scored struct {
		Candidate
		published int64
	}

	// Zero-score documents stay in the ranking: the budget is
	// maxCandidates model calls, and the extractor's relevance score is
	// what finally decides, not this score
	all := make([]scored, 0, len(docs))
	for _, doc := range docs {
		all = append(all, scored{
			Candidate: Candidate{DocumentID: doc.ID, Score: m.score(queryTerms, doc.FullText)},
			published: doc.PublicationDate.UnixMilli(),
		})
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		if all[i].published != all[j].published {
			return all[i].published > all[j].published
		}
		return all[i].DocumentID < all[j].DocumentID
	})

	if len(all) > maxCandidates {
		all = all[:maxCandidates]
	}

	out := make([]Candidate, len(all))
	for i, s := range all {
		out[i] = s.Candidate
	}
	return out
}

// score is the fraction of query terms present in the document, weighted
// by how often they occur (capped so a single repeated term cannot
// dominate).
func (m *Matcher) score(queryTerms map[string]struct{}, text string) float64 {
	counts := make(map[string]int)
	for _, tok := range m.tokenize(text) {
		if _, wanted := queryTerms[tok]; wanted {
			counts[tok]++
		}
	}
	if len(counts) == 0 {
		return 0
	}

	weighted := 0.0
	for _, c := range counts {
		if c > 5 {
			c = 5
		}
		weighted += 1.0 + float64(c-1)*0.1
	}
	return weighted / float64(len(queryTerms))
}

func (m *Matcher) termSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range m.tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}

// tokenize lowercases, strips residual markup and punctuation, and drops
// stopwords. Negation terms survive: "not", "no", "without" and similar
// flip meaning in legal text and must stay matchable.
func (m *Matcher) tokenize(text string) []string {
	if strings.ContainsRune(text, '<') {
		text = stripMarkup(text)
	}
	lower := strings.ToLower(text)
	raw := m.tokenPattern.FindAllString(lower, -1)

	out := raw[:0]
	for _, t := range raw {
		if _, isStop := m.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// stripMarkup extracts visible text from HTML-ish content. EUR-Lex
// exports sometimes carry residual tags in full_text.
func stripMarkup(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return buf.String()
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that",
		"these", "those", "from", "up", "down", "over", "under", "again",
		"further", "than", "so", "such", "into", "about", "between",
		"through", "during", "before", "after", "above", "below", "out",
		"off", "own", "same", "too", "very", "can", "will", "just",
		"shall", "whereas", "thereof", "herein", "hereby", "pursuant",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	// Negations are load-bearing in legal text; make sure none slipped in
	for _, neg := range []string{"not", "no", "nor", "without", "never", "none"} {
		delete(m, neg)
	}
	return m
}
