package document

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestWritePlainFilename(t *testing.T) {
	dir := t.TempDir()
	doc := Document{
		ID:       "page-1",
		Metadata: Metadata{ID: "page-1", Title: "Title"},
		Content:  "body text",
		Category: CategoryNotion,
	}
	if err := doc.Write(dir, false, false); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "page-1.json"))
	if err != nil {
		t.Fatalf("reading written document: %v", err)
	}
	var got Document
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("written document is not valid JSON: %v", err)
	}
	if got.Content != "body text" || got.Metadata.Title != "Title" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "page-1.txt")); !os.IsNotExist(err) {
		t.Error("txt file written without alsoTxt")
	}
}

func TestWriteObfuscatedWithText(t *testing.T) {
	dir := t.TempDir()
	doc := Document{ID: "page-1", Content: "body text"}
	if err := doc.Write(dir, true, true); err != nil {
		t.Fatalf("Write: %v", err)
	}

	sum := md5.Sum([]byte("page-1"))
	name := hex.EncodeToString(sum[:])
	if _, err := os.Stat(filepath.Join(dir, name+".json")); err != nil {
		t.Errorf("expected obfuscated json file: %v", err)
	}
	text, err := os.ReadFile(filepath.Join(dir, name+".txt"))
	if err != nil {
		t.Fatalf("expected obfuscated txt file: %v", err)
	}
	if string(text) != "body text" {
		t.Errorf("txt content = %q", text)
	}
}
