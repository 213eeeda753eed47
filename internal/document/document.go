package document

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Category identifies where a document came from, so that the matching
// cleaning handler can be selected.
type Category string

const (
	CategoryNotion Category = "notion"
	CategoryTrello Category = "trello"
)

// Metadata describes a document independently of its content. For pages
// extracted from a database the surrounding system supplies the title,
// typed properties and canonical page URL; they pass through untouched.
type Metadata struct {
	ID         string                 `json:"id"`
	Title      string                 `json:"title"`
	Properties map[string]interface{} `json:"properties"`
	PageLink   string                 `json:"page_link"`
}

// Document is one extracted unit of content: the flattened text of a page
// plus the deduplicated outbound resource URLs discovered in its tree.
type Document struct {
	ID             string    `json:"id"`
	Metadata       Metadata  `json:"metadata"`
	ParentMetadata *Metadata `json:"parent_metadata,omitempty"`
	Content        string    `json:"content"`
	ChildURLs      []string  `json:"child_urls"`
	Category       Category  `json:"category"`
}

// Write saves the document to outputDir in JSON form and, when alsoTxt is
// set, its raw content as a plain-text file next to it. With obfuscate set
// the filename is the md5 hex digest of the document ID instead of the ID.
func (d Document) Write(outputDir string, obfuscate, alsoTxt bool) error {
	filename := d.ID
	if obfuscate {
		sum := md5.Sum([]byte(d.ID))
		filename = hex.EncodeToString(sum[:])
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", d.ID, err)
	}
	jsonPath := filepath.Join(outputDir, filename+".json")
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write document %s: %w", d.ID, err)
	}

	if alsoTxt {
		txtPath := filepath.Join(outputDir, filename+".txt")
		if err := os.WriteFile(txtPath, []byte(d.Content), 0644); err != nil {
			return fmt.Errorf("failed to write document text %s: %w", d.ID, err)
		}
	}
	return nil
}
