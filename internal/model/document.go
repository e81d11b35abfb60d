package model

import "time"

// DocumentRecord is one legal/regulatory document from the corpus.
// Records are created at corpus build time and never mutated afterwards,
// so they are safe to share across concurrent analysis jobs.
type DocumentRecord struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	FullText        string    `json:"full_text"`
	PublicationDate time.Time `json:"publication_date"`
	DocType         string    `json:"doc_type"`
	SectionTags     []string  `json:"section_tags,omitempty"`
}
