package hnsw

import (
	"path/filepath"
	"testing"

	"github.com/egobogo/notionrag/internal/vector"
)

func entry(id string, embedding []float64) vector.Entry {
	return vector.Entry{ID: id, DocumentID: "doc-" + id, Text: "text " + id, Embedding: embedding}
}

func TestUpsertAndSearch(t *testing.T) {
	store, err := New(3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	err = store.Upsert([]vector.Entry{
		entry("a", []float64{1, 0, 0}),
		entry("b", []float64{0, 1, 0}),
		entry("c", []float64{0.9, 0.1, 0}),
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if store.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", store.Len())
	}

	matches, err := store.Search([]float64{1, 0, 0}, 2, 0.5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("expected matches")
	}
	if matches[0].Entry.ID != "a" {
		t.Errorf("best match should be the identical vector, got %q", matches[0].Entry.ID)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Similarity > matches[i-1].Similarity {
			t.Errorf("matches not sorted by similarity: %v", matches)
		}
	}
}

func TestUpsertRejectsWrongDimension(t *testing.T) {
	store, _ := New(3)
	if err := store.Upsert([]vector.Entry{entry("a", []float64{1, 0})}); err == nil {
		t.Errorf("expected dimension mismatch error")
	}
}

func TestSearchThresholdFiltersMatches(t *testing.T) {
	store, _ := New(2)
	if err := store.Upsert([]vector.Entry{entry("orthogonal", []float64{0, 1})}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	matches, err := store.Search([]float64{1, 0}, 5, 0.5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("orthogonal vector should fall below threshold, got %v", matches)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")

	store, _ := New(2)
	if err := store.Upsert([]vector.Entry{
		entry("a", []float64{1, 0}),
		entry("b", []float64{0, 1}),
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	restored, _ := New(2)
	if err := restored.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if restored.Len() != 2 {
		t.Errorf("expected 2 restored entries, got %d", restored.Len())
	}
	matches, err := restored.Search([]float64{1, 0}, 1, 0.9)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Entry.ID != "a" {
		t.Errorf("restored index search mismatch: %v", matches)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	store, _ := New(2)
	if err := store.Load(filepath.Join(t.TempDir(), "absent.json")); err != nil {
		t.Errorf("missing index file should not fail: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("store should stay empty")
	}
}
