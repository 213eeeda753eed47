// Package chunk splits cleaned documents into embeddable pieces.
package chunk

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/egobogo/notionrag/internal/document"
)

// DefaultChunkSize is the character budget per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is how much of the previous chunk's tail is repeated
// at the start of the next one, so retrieval does not lose context cut at a
// chunk boundary.
const DefaultChunkOverlap = 100

// Chunk is one embeddable slice of a document, carrying enough metadata to
// trace it back to its source page.
type Chunk struct {
	ID         string            `json:"id"`
	DocumentID string            `json:"document_id"`
	Index      int               `json:"index"`
	Text       string            `json:"text"`
	Metadata   document.Metadata `json:"metadata"`
}

// Splitter cuts document content into chunks of at most ChunkSize
// characters, packing whole paragraphs together and splitting an oversized
// paragraph on line and then word boundaries. With a positive Overlap every
// chunk after the first starts with the last Overlap characters of its
// predecessor; the overlap counts against the chunk budget.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

// NewSplitter creates a Splitter. A non-positive chunkSize falls back to
// DefaultChunkSize; a negative overlap disables overlap, and an overlap of
// half the budget or more is clamped so packing always has room left.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize/2 {
		overlap = chunkSize / 2
	}
	return &Splitter{ChunkSize: chunkSize, Overlap: overlap}
}

// Split chunks one document. An empty document yields no chunks.
func (s *Splitter) Split(doc document.Document) []Chunk {
	pieces := s.splitText(doc.Content)
	chunks := make([]Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Index:      i,
			Text:       piece,
			Metadata:   doc.Metadata,
		})
	}
	return chunks
}

func (s *Splitter) splitText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	// Packing reserves room for the overlap prefix and its joining newline,
	// so a finished chunk never exceeds ChunkSize.
	budget := s.ChunkSize
	if s.Overlap > 0 {
		budget = s.ChunkSize - s.Overlap - 1
	}
	if budget < 1 {
		budget = 1
	}

	var pieces []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			pieces = append(pieces, current.String())
			current.Reset()
		}
	}

	for _, paragraph := range strings.Split(text, "\n\n") {
		for _, part := range s.splitOversized(paragraph, budget) {
			if current.Len() > 0 && current.Len()+len(part)+2 > budget {
				flush()
			}
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(part)
		}
	}
	flush()

	if s.Overlap > 0 {
		// Backwards, so each prefix is taken from the neighbor's original
		// text rather than from an already-prefixed one.
		for i := len(pieces) - 1; i >= 1; i-- {
			pieces[i] = tail(pieces[i-1], s.Overlap) + "\n" + pieces[i]
		}
	}
	return pieces
}

// splitOversized breaks a paragraph that exceeds the chunk budget, first on
// lines, then on words. A single word longer than the budget is cut hard on
// a rune boundary.
func (s *Splitter) splitOversized(paragraph string, budget int) []string {
	if len(paragraph) <= budget {
		return []string{paragraph}
	}

	var parts []string
	var current strings.Builder
	appendUnit := func(unit, sep string) {
		if current.Len() > 0 && current.Len()+len(sep)+len(unit) > budget {
			parts = append(parts, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(unit)
	}

	for _, line := range strings.Split(paragraph, "\n") {
		if len(line) <= budget {
			appendUnit(line, "\n")
			continue
		}
		for _, word := range strings.Fields(line) {
			if len(word) <= budget {
				appendUnit(word, " ")
				continue
			}
			for _, piece := range hardCut(word, budget) {
				appendUnit(piece, " ")
			}
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// tail returns the last n bytes of text, rounded forward to a rune boundary.
func tail(text string, n int) string {
	if len(text) <= n {
		return text
	}
	cut := len(text) - n
	for cut < len(text) && !utf8.RuneStart(text[cut]) {
		cut++
	}
	return text[cut:]
}

// hardCut slices a string into pieces of at most budget bytes without
// breaking inside a rune.
func hardCut(s string, budget int) []string {
	var parts []string
	var current strings.Builder
	for _, r := range s {
		if current.Len()+len(string(r)) > budget {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
