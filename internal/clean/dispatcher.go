package clean

import (
	"fmt"
	"log/slog"

	"github.com/egobogo/notionrag/internal/document"
)

// Handler cleans one document and returns the cleaned copy.
type Handler interface {
	Clean(doc document.Document) (document.Document, error)
}

// NotionCleaner cleans documents extracted from Notion pages.
type NotionCleaner struct {
	MinLineLength int
}

// Clean applies the full Notion text-cleaning pass to the document content.
func (c NotionCleaner) Clean(doc document.Document) (document.Document, error) {
	doc.Content = Text(doc.Content, c.MinLineLength)
	return doc, nil
}

// TrelloCleaner cleans documents built from Trello cards. Card text is
// short-form, so only whitespace and emoji normalization applies; the tiny-
// line filter would eat checklist items.
type TrelloCleaner struct{}

// Clean normalizes whitespace and strips emojis from the card content.
func (TrelloCleaner) Clean(doc document.Document) (document.Document, error) {
	text := crlfRe.ReplaceAllString(doc.Content, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	text = emojiRe.ReplaceAllString(text, "")
	doc.Content = text
	return doc, nil
}

// NotionMinLineLength overrides the default tiny-line threshold used by the
// dispatcher; zero keeps DefaultMinLineLength.
var NotionMinLineLength int

// HandlerFor picks the cleaning handler matching a document category.
func HandlerFor(category document.Category) (Handler, error) {
	switch category {
	case document.CategoryNotion:
		return NotionCleaner{MinLineLength: NotionMinLineLength}, nil
	case document.CategoryTrello:
		return TrelloCleaner{}, nil
	default:
		return nil, fmt.Errorf("unsupported document category: %q", category)
	}
}

// Dispatch routes a document to its cleaning handler. Cleaning is best
// effort: any failure returns the original document unchanged.
func Dispatch(doc document.Document) document.Document {
	handler, err := HandlerFor(doc.Category)
	if err != nil {
		slog.Error("failed to clean document", "document_id", doc.ID, "error", err)
		return doc
	}
	cleaned, err := handler.Clean(doc)
	if err != nil {
		slog.Error("failed to clean document", "document_id", doc.ID, "error", err)
		return doc
	}
	slog.Debug("document cleaned",
		"document_id", doc.ID, "original_len", len(doc.Content), "cleaned_len", len(cleaned.Content))
	return cleaned
}
