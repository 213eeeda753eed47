// Package pipeline orchestrates a full ingestion run: fetch page metadata,
// flatten content, clean, persist to disk, then chunk, embed and index.
package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/egobogo/notionrag/internal/chunk"
	"github.com/egobogo/notionrag/internal/clean"
	"github.com/egobogo/notionrag/internal/document"
	"github.com/egobogo/notionrag/internal/embed"
	"github.com/egobogo/notionrag/internal/metrics"
	"github.com/egobogo/notionrag/internal/vector"
)

// MetadataFetcher lists the pages of one source database.
type MetadataFetcher interface {
	FetchPages(databaseID, filterJSON string) ([]document.Metadata, error)
}

// ContentExtractor flattens one page into a document. It is total: a page
// whose tree cannot be fetched produces an empty document, not an error.
type ContentExtractor interface {
	ExtractContent(meta document.Metadata) document.Document
}

// DocumentSource produces ready-made documents from an external system,
// such as a Trello board.
type DocumentSource interface {
	FetchDocuments() ([]document.Document, error)
}

// Pipeline wires the ingestion stages together. Embedder and Store may be
// nil, in which case extraction and persistence run but nothing is indexed.
type Pipeline struct {
	Fetcher    MetadataFetcher
	Extractor  ContentExtractor
	Splitter   *chunk.Splitter
	Embedder   embed.Provider
	Store      vector.Store
	DataDir    string
	BatchSize  int
	MaxWorkers int
}

// Summary reports what one run did.
type Summary struct {
	Databases int
	Documents int
	Chunks    int
	Links     int
	Failures  int
	Duration  time.Duration
}

// Run extracts every configured database, saves the cleaned documents under
// DataDir/notion_data and indexes their chunks. Each worker runs its own
// independent extraction; the only shared state is the vector store, which
// synchronizes internally.
func (p *Pipeline) Run(databaseIDs []string, filterJSON string) (Summary, error) {
	metrics.Init()
	start := time.Now()
	var summary Summary

	notionDir := filepath.Join(p.DataDir, "notion_data")
	if err := os.MkdirAll(notionDir, 0755); err != nil {
		return summary, fmt.Errorf("failed to create data directory: %w", err)
	}

	var allDocs []document.Document
	for i, databaseID := range databaseIDs {
		slog.Info("extracting database", "database_id", databaseID)
		summary.Databases++

		pages, err := p.Fetcher.FetchPages(databaseID, filterJSON)
		if err != nil {
			slog.Error("failed to fetch database pages", "database_id", databaseID, "error", err)
			metrics.FetchFailures.Inc()
			summary.Failures++
			continue
		}
		metrics.PagesFetched.WithLabelValues(databaseID).Add(float64(len(pages)))

		docs := make([]document.Document, 0, len(pages))
		for _, meta := range pages {
			doc := p.Extractor.ExtractContent(meta)
			docs = append(docs, clean.Dispatch(doc))
		}

		outputDir := filepath.Join(notionDir, fmt.Sprintf("notion_data_%d", i))
		if err := saveDocuments(docs, outputDir); err != nil {
			slog.Error("failed to save documents", "database_id", databaseID, "error", err)
			summary.Failures++
		}
		allDocs = append(allDocs, docs...)
		slog.Info("completed database extraction", "database_id", databaseID, "documents", len(docs))
	}

	summary.Documents = len(allDocs)
	for _, doc := range allDocs {
		summary.Links += len(doc.ChildURLs)
	}
	metrics.DocumentsExtracted.Add(float64(len(allDocs)))

	chunks := p.splitAll(allDocs)
	indexed, failures := p.indexChunks(chunks)
	summary.Chunks = indexed
	summary.Failures += failures

	summary.Duration = time.Since(start)
	metrics.RunDuration.Observe(summary.Duration.Seconds())
	return summary, nil
}

// RunSource ingests documents from an auxiliary source, saving them under
// DataDir/<name> and indexing their chunks.
func (p *Pipeline) RunSource(name string, source DocumentSource) (Summary, error) {
	metrics.Init()
	start := time.Now()
	var summary Summary

	docs, err := source.FetchDocuments()
	if err != nil {
		return summary, fmt.Errorf("failed to fetch documents from %s: %w", name, err)
	}

	cleaned := make([]document.Document, 0, len(docs))
	for _, doc := range docs {
		cleaned = append(cleaned, clean.Dispatch(doc))
	}

	outputDir := filepath.Join(p.DataDir, name)
	if err := saveDocuments(cleaned, outputDir); err != nil {
		return summary, fmt.Errorf("failed to save %s documents: %w", name, err)
	}

	summary.Documents = len(cleaned)
	for _, doc := range cleaned {
		summary.Links += len(doc.ChildURLs)
	}
	metrics.DocumentsExtracted.Add(float64(len(cleaned)))

	indexed, failures := p.indexChunks(p.splitAll(cleaned))
	summary.Chunks = indexed
	summary.Failures += failures

	summary.Duration = time.Since(start)
	return summary, nil
}

func (p *Pipeline) splitAll(docs []document.Document) []chunk.Chunk {
	if p.Splitter == nil {
		return nil
	}
	var chunks []chunk.Chunk
	for _, doc := range docs {
		chunks = append(chunks, p.Splitter.Split(doc)...)
	}
	return chunks
}

// saveDocuments replaces outputDir with a fresh directory holding every
// document as obfuscated JSON plus a plain-text copy.
func saveDocuments(docs []document.Document, outputDir string) error {
	if err := os.RemoveAll(outputDir); err != nil {
		return fmt.Errorf("failed to clear output directory: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, doc := range docs {
		if err := doc.Write(outputDir, true, true); err != nil {
			return err
		}
	}
	return nil
}

// indexChunks embeds and upserts chunks in batches on a bounded worker
// pool. It returns how many chunks were indexed and how many batches
// failed.
func (p *Pipeline) indexChunks(chunks []chunk.Chunk) (indexed, failures int) {
	if p.Embedder == nil || p.Store == nil || len(chunks) == 0 {
		return 0, 0
	}

	batchSize := p.BatchSize
	if batchSize <= 0 {
		batchSize = 4
	}
	workers := p.MaxWorkers
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan []chunk.Chunk)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				if err := p.indexBatch(batch); err != nil {
					slog.Warn("failed to index batch", "size", len(batch), "error", err)
					metrics.EmbeddingBatches.WithLabelValues("failure").Inc()
					mu.Lock()
					failures++
					mu.Unlock()
					continue
				}
				metrics.EmbeddingBatches.WithLabelValues("success").Inc()
				metrics.ChunksIndexed.Add(float64(len(batch)))
				mu.Lock()
				indexed += len(batch)
				mu.Unlock()
			}
		}()
	}

	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		jobs <- chunks[start:end]
	}
	close(jobs)
	wg.Wait()
	return indexed, failures
}

func (p *Pipeline) indexBatch(batch []chunk.Chunk) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}
	embeddings, err := p.Embedder.ComputeEmbeddings(texts)
	if err != nil {
		return fmt.Errorf("failed to compute embeddings: %w", err)
	}
	if len(embeddings) != len(batch) {
		return fmt.Errorf("expected %d embeddings, got %d", len(batch), len(embeddings))
	}

	entries := make([]vector.Entry, len(batch))
	for i, c := range batch {
		entries[i] = vector.Entry{
			ID:         c.ID,
			DocumentID: c.DocumentID,
			Text:       c.Text,
			Metadata:   c.Metadata,
			Embedding:  embeddings[i],
		}
	}
	if err := p.Store.Upsert(entries); err != nil {
		return fmt.Errorf("failed to upsert entries: %w", err)
	}
	return nil
}
