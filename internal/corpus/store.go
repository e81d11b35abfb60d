package corpus

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/reglens/reglens/internal/model"
)

// ErrUnavailable wraps any failure to open or read the corpus. No
// analysis is possible without documents, so callers abort the whole
// request on it rather than degrading.
type ErrUnavailable struct {
	Err error
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("corpus unavailable: %v", e.Err)
}

func (e *ErrUnavailable) Unwrap() error {
	return e.Err
}

// row is the on-disk parquet schema of the consolidated corpus file
type row struct {
	ID              string   `parquet:"id"`
	Title           string   `parquet:"title"`
	FullText        string   `parquet:"full_text"`
	PublicationDate int64    `parquet:"publication_date,timestamp(millisecond)"`
	DocType         string   `parquet:"doc_type"`
	SectionTags     []string `parquet:"section_tags,list"`
}

// Store provides read-only access to the document corpus. Records are
// loaded once and shared across all concurrent analysis jobs without
// locking.
type Store struct {
	docs  []model.DocumentRecord
	byID  map[string]int
	paths []string
}

// NewStore creates a store that will load from the first existing path
func NewStore(paths []string) *Store {
	return &Store{paths: paths}
}

// Open loads the corpus into memory. The first path that exists wins,
// matching how the consolidated file may live in the project root or a
// data subfolder.
func (s *Store) Open() error {
	var path string
	for _, p := range s.paths {
		if _, err := os.Stat(p); err == nil {
			path = p
			break
		}
	}
	if path == "" {
		return &ErrUnavailable{Err: fmt.Errorf("no corpus file found in %v", s.paths)}
	}

	rows, err := parquet.ReadFile[row](path)
	if err != nil {
		return &ErrUnavailable{Err: fmt.Errorf("read %s: %w", path, err)}
	}
	if len(rows) == 0 {
		return &ErrUnavailable{Err: fmt.Errorf("%s contains no documents", path)}
	}

	s.docs = make([]model.DocumentRecord, len(rows))
	s.byID = make(map[string]int, len(rows))
	for i, r := range rows {
		s.docs[i] = model.DocumentRecord{
			ID:              r.ID,
			Title:           r.Title,
			FullText:        r.FullText,
			PublicationDate: time.UnixMilli(r.PublicationDate).UTC(),
			DocType:         r.DocType,
			SectionTags:     r.SectionTags,
		}
		s.byID[r.ID] = i
	}

	// Newest first, so "recent documents" views are a prefix
	sort.SliceStable(s.docs, func(i, j int) bool {
		return s.docs[i].PublicationDate.After(s.docs[j].PublicationDate)
	})
	for i, d := range s.docs {
		s.byID[d.ID] = i
	}

	return nil
}

// Load returns all documents, newest first
func (s *Store) Load() []model.DocumentRecord {
	return s.docs
}

// Count returns the number of documents in the corpus
func (s *Store) Count() int {
	return len(s.docs)
}

// Get returns the document with the given id
func (s *Store) Get(id string) (model.DocumentRecord, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return model.DocumentRecord{}, false
	}
	return s.docs[idx], true
}

// FilterByDate returns documents published within [from, to]. Zero
// bounds are open on that side.
func (s *Store) FilterByDate(from, to time.Time) []model.DocumentRecord {
	if from.IsZero() && to.IsZero() {
		return s.docs
	}

	var out []model.DocumentRecord
	for _, d := range s.docs {
		if !from.IsZero() && d.PublicationDate.Before(from) {
			continue
		}
		if !to.IsZero() && d.PublicationDate.After(to) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// FromRecords builds a store from already-loaded records.
// Used by tests and by callers that source documents elsewhere.
func FromRecords(docs []model.DocumentRecord) *Store {
	s := &Store{
		docs: make([]model.DocumentRecord, len(docs)),
		byID: make(map[string]int, len(docs)),
	}
	copy(s.docs, docs)
	sort.SliceStable(s.docs, func(i, j int) bool {
		return s.docs[i].PublicationDate.After(s.docs[j].PublicationDate)
	})
	for i, d := range s.docs {
		s.byID[d.ID] = i
	}
	return s
}
