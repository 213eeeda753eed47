package hnsw

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/coder/hnsw"

	"github.com/egobogo/notionrag/internal/vector"
)

// HNSWStore implements vector.Store using the coder/hnsw generic graph.
// Entries live in memory; Save and Load persist them as JSON so an index
// survives between runs.
type HNSWStore struct {
	graph   *hnsw.Graph[string]     // Underlying HNSW graph.
	dim     int                     // Dimensionality of embeddings.
	entries map[string]vector.Entry // Map from entry ID to Entry.
	mu      sync.Mutex
}

// New creates a new HNSWStore with the given embedding dimension.
func New(dim int) (*HNSWStore, error) {
	if dim <= 0 {
		return nil, errors.New("embedding dimension must be positive")
	}
	g := hnsw.NewGraph[string]()
	return &HNSWStore{
		graph:   g,
		dim:     dim,
		entries: make(map[string]vector.Entry),
	}, nil
}

// Upsert adds the entries to the graph. Every embedding must have the
// store's dimension.
func (s *HNSWStore) Upsert(entries []vector.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range entries {
		if len(entry.Embedding) != s.dim {
			return fmt.Errorf("entry %s: embedding dimension %d, want %d", entry.ID, len(entry.Embedding), s.dim)
		}
		node := hnsw.MakeNode(entry.ID, float32Slice(entry.Embedding))
		s.graph.Add(node)
		s.entries[entry.ID] = entry
	}
	return nil
}

// Search performs a similarity search for the query embedding, returning up
// to k matches with cosine similarity above the threshold, best first.
func (s *HNSWStore) Search(query []float64, k int, threshold float64) ([]vector.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(query) != s.dim {
		return nil, errors.New("query embedding dimension mismatch")
	}

	q := float32Slice(query)
	neighbors := s.graph.Search(q, k)

	var matches []vector.Match
	for _, node := range neighbors {
		sim := cosineSimilarity(q, node.Value)
		if sim >= threshold {
			if entry, ok := s.entries[node.Key]; ok {
				matches = append(matches, vector.Match{Entry: entry, Similarity: sim})
			}
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches, nil
}

// Len reports the number of indexed entries.
func (s *HNSWStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Save writes all entries to path as JSON.
func (s *HNSWStore) Save(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]vector.Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		all = append(all, entry)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

// Load reads entries from path and indexes them. A missing file is not an
// error; the store simply starts empty.
func (s *HNSWStore) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read index: %w", err)
	}
	var all []vector.Entry
	if err := json.Unmarshal(data, &all); err != nil {
		return fmt.Errorf("failed to decode index: %w", err)
	}
	return s.Upsert(all)
}

// float32Slice converts a slice of float64 to []float32.
func float32Slice(input []float64) []float32 {
	out := make([]float32, len(input))
	for i, v := range input {
		out[i] = float32(v)
	}
	return out
}

// cosineSimilarity computes the cosine similarity between two []float32 vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := 0; i < len(a); i++ {
		dot += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
