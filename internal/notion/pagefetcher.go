package notion

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/egobogo/notionrag/internal/document"
)

// PageFetcher wraps a Client with incremental-extraction bookkeeping: the
// timestamp of the last successful run is kept in a file so that subsequent
// runs only see pages edited since then.
type PageFetcher struct {
	Client        *Client
	TimestampFile string
}

// NewPageFetcher creates a PageFetcher. If timestampFile is empty a default
// of "last_run.txt" in the working directory is used.
func NewPageFetcher(client *Client, timestampFile string) *PageFetcher {
	if timestampFile == "" {
		timestampFile = "last_run.txt"
	}
	return &PageFetcher{
		Client:        client,
		TimestampFile: timestampFile,
	}
}

// FetchPages queries the database for pages edited since the stored
// timestamp (all pages when no timestamp exists) and advances the timestamp
// on success. A failure to persist the timestamp is logged but does not
// fail the fetch. A corrupted stored timestamp yields no pages and does NOT
// advance; advancing would permanently skip everything edited between the
// corrupted value and now.
func (pf *PageFetcher) FetchPages(databaseID, filterJSON string) ([]document.Metadata, error) {
	since := ""
	if data, err := os.ReadFile(pf.TimestampFile); err == nil {
		since = strings.TrimSpace(string(data))
	}
	if since != "" {
		if _, err := time.Parse(time.RFC3339, since); err != nil {
			slog.Warn("stored last-run timestamp is invalid, skipping extraction until the file is fixed or removed",
				"file", pf.TimestampFile, "value", since, "error", err)
			return nil, nil
		}
	}

	pages, err := pf.Client.QueryDatabase(databaseID, filterJSON, since)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if err := os.WriteFile(pf.TimestampFile, []byte(now), 0644); err != nil {
		slog.Warn("failed to store last-run timestamp", "file", pf.TimestampFile, "error", err)
	}
	return pages, nil
}
