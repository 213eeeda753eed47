package vector

import "github.com/egobogo/notionrag/internal/document"

// Entry is one indexed chunk of a document.
type Entry struct {
	ID         string            `json:"id"`
	DocumentID string            `json:"document_id"`
	Text       string            `json:"text"`
	Metadata   document.Metadata `json:"metadata"`
	Embedding  []float64         `json:"embedding"`
}

// Match couples an entry with its similarity to a query.
type Match struct {
	Entry      Entry
	Similarity float64
}

// Store defines an interface for indexing chunk entries and searching them
// by embedding similarity.
type Store interface {
	// Upsert adds or replaces entries in the index.
	Upsert(entries []Entry) error
	// Search returns up to k entries whose similarity to the query
	// embedding is above threshold, best match first.
	Search(query []float64, k int, threshold float64) ([]Match, error)
	// Len reports the number of indexed entries.
	Len() int
}
