package extract

import (
	"log/slog"

	"github.com/egobogo/notionrag/internal/document"
)

// Extractor turns page metadata into extracted documents by flattening the
// page's block tree.
type Extractor struct {
	flattener *Flattener
}

// NewExtractor creates an Extractor over the given Fetcher.
func NewExtractor(fetcher Fetcher) *Extractor {
	return &Extractor{flattener: New(fetcher)}
}

// ExtractContent flattens the page behind meta and assembles a document
// from the result. Parent metadata, when the page belongs to a database,
// is lifted out of the properties into its own field.
func (e *Extractor) ExtractContent(meta document.Metadata) document.Document {
	result := e.flattener.Flatten(meta.ID)

	var parent *document.Metadata
	if p, ok := meta.Properties["parent"].(document.Metadata); ok {
		parent = &p
		delete(meta.Properties, "parent")
	}

	slog.Debug("extracted page content",
		"page_id", meta.ID, "content_len", len(result.Text), "links", len(result.Links))

	return document.Document{
		ID:             meta.ID,
		Metadata:       meta,
		ParentMetadata: parent,
		Content:        result.Text,
		ChildURLs:      result.Links,
		Category:       document.CategoryNotion,
	}
}
