package notion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/egobogo/notionrag/internal/document"
)

// Client talks to the Notion REST API. It is the single place where
// transport failures are observed; callers that can tolerate a missing
// subtree collapse an error into an empty result.
type Client struct {
	Token      string // Notion integration token (secret)
	BaseURL    string // e.g., "https://api.notion.com/v1"
	APIVersion string // e.g., "2022-06-28"
	HTTPClient *http.Client
}

// NewClient creates a new Client instance.
func NewClient(token string) *Client {
	return &Client{
		Token:      token,
		BaseURL:    "https://api.notion.com/v1",
		APIVersion: "2022-06-28",
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

const (
	childPageSize = 100
	maxRetries    = 3
)

// PageURL derives the canonical page URL from a block or page ID by
// stripping the ID's separator characters.
func PageURL(id string) string {
	return "https://www.notion.so/" + strings.ReplaceAll(id, "-", "")
}

// FetchBlockChildren returns the fully materialized, ordered list of
// immediate child blocks of the given block or page, following the
// cursor pagination until exhausted. Transient 502 responses are retried
// up to maxRetries times with a linearly growing delay.
func (c *Client) FetchBlockChildren(blockID string) ([]Block, error) {
	var all []Block
	var startCursor *string

	baseDelay := time.Second

	for {
		url := fmt.Sprintf("%s/blocks/%s/children?page_size=%d", c.BaseURL, blockID, childPageSize)
		if startCursor != nil {
			url = fmt.Sprintf("%s&start_cursor=%s", url, *startCursor)
		}

		var body []byte
		retryCount := 0
	retryRequest:
		req, err := http.NewRequest("GET", url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request for block children: %w", err)
		}
		req.Header.Add("Authorization", "Bearer "+c.Token)
		req.Header.Add("Notion-Version", c.APIVersion)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			slog.Warn("notion block children request failed", "block_id", blockID, "error", err)
			return nil, fmt.Errorf("failed to get block children: %w", err)
		}
		body, _ = ioutil.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if resp.StatusCode == http.StatusBadGateway && retryCount < maxRetries {
				retryCount++
				time.Sleep(baseDelay * time.Duration(retryCount))
				goto retryRequest
			}
			slog.Warn("notion block children request rejected",
				"block_id", blockID, "status", resp.StatusCode)
			return nil, fmt.Errorf("failed to get block children, status: %d, body: %s", resp.StatusCode, string(body))
		}

		var result struct {
			Results    []Block `json:"results"`
			HasMore    bool    `json:"has_more"`
			NextCursor string  `json:"next_cursor"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to decode block children: %w", err)
		}
		all = append(all, result.Results...)

		if !result.HasMore {
			break
		}
		startCursor = &result.NextCursor
	}
	return all, nil
}

// propertyValue is one typed property of a database page.
type propertyValue struct {
	Type        string `json:"type"`
	Select      *struct {
		Name string `json:"name"`
	} `json:"select,omitempty"`
	MultiSelect []struct {
		Name string `json:"name"`
	} `json:"multi_select,omitempty"`
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
	Number   *float64   `json:"number,omitempty"`
	Checkbox *bool      `json:"checkbox,omitempty"`
	Date     *struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"date,omitempty"`
}

// QueryDatabase queries a Notion database and maps every returned page to
// document metadata. filterJSON, when non-empty, must hold a Notion filter
// object; since, when non-empty, must be an RFC 3339 timestamp and
// restricts the result to pages edited after it. An unparsable since value
// yields no pages rather than a full re-extraction.
func (c *Client) QueryDatabase(databaseID, filterJSON, since string) ([]document.Metadata, error) {
	filterBody := map[string]interface{}{}
	if strings.TrimSpace(filterJSON) != "" {
		var userFilter map[string]interface{}
		if err := json.Unmarshal([]byte(filterJSON), &userFilter); err != nil {
			return nil, fmt.Errorf("invalid filter parameters: %w", err)
		}
		filterBody = userFilter
	}

	if since != "" {
		if _, err := time.Parse(time.RFC3339, since); err != nil {
			slog.Debug("invalid since timestamp, skipping query", "since", since, "error", err)
			return nil, nil
		}
		timeFilter := map[string]interface{}{
			"timestamp": "last_edited_time",
			"last_edited_time": map[string]interface{}{
				"after": since,
			},
		}
		if existing, ok := filterBody["filter"]; ok {
			filterBody["filter"] = map[string]interface{}{
				"and": []interface{}{existing, timeFilter},
			}
		} else {
			filterBody["filter"] = timeFilter
		}
	}

	var pages []document.Metadata
	var startCursor *string

	for {
		if startCursor != nil {
			filterBody["start_cursor"] = *startCursor
		}
		data, err := json.Marshal(filterBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal query payload: %w", err)
		}
		req, err := http.NewRequest("POST", fmt.Sprintf("%s/databases/%s/query", c.BaseURL, databaseID), bytes.NewBuffer(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create query request: %w", err)
		}
		req.Header.Add("Authorization", "Bearer "+c.Token)
		req.Header.Add("Notion-Version", c.APIVersion)
		req.Header.Add("Content-Type", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			slog.Warn("notion database query failed", "database_id", databaseID, "error", err)
			return nil, fmt.Errorf("failed to query database: %w", err)
		}
		body, _ := ioutil.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			slog.Warn("notion database query rejected",
				"database_id", databaseID, "status", resp.StatusCode)
			return nil, fmt.Errorf("failed to query database, status: %d, body: %s", resp.StatusCode, string(body))
		}

		var result struct {
			Results []struct {
				ID     string `json:"id"`
				URL    string `json:"url"`
				Parent struct {
					Type       string `json:"type"`
					DatabaseID string `json:"database_id,omitempty"`
				} `json:"parent"`
				Properties map[string]json.RawMessage `json:"properties"`
			} `json:"results"`
			HasMore    bool   `json:"has_more"`
			NextCursor string `json:"next_cursor"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to decode query results: %w", err)
		}

		for _, page := range result.Results {
			meta := document.Metadata{
				ID:         page.ID,
				Properties: extractProperties(page.Properties),
				PageLink:   page.URL,
			}
			if title, ok := meta.Properties["Name"].(string); ok {
				meta.Title = title
				delete(meta.Properties, "Name")
			} else {
				meta.Title = "Untitled"
			}
			if page.Parent.DatabaseID != "" {
				meta.Properties["parent"] = document.Metadata{ID: page.Parent.DatabaseID}
			}
			pages = append(pages, meta)
		}

		if !result.HasMore {
			break
		}
		startCursor = &result.NextCursor
	}
	return pages, nil
}

// extractProperties flattens Notion's typed property objects into plain
// values. Unrecognized property types keep their raw decoded value.
func extractProperties(raw map[string]json.RawMessage) map[string]interface{} {
	extracted := make(map[string]interface{}, len(raw))

	for key, msg := range raw {
		var prop propertyValue
		if err := json.Unmarshal(msg, &prop); err != nil {
			continue
		}
		switch prop.Type {
		case "select":
			if prop.Select != nil {
				extracted[key] = prop.Select.Name
			}
		case "multi_select":
			names := make([]string, 0, len(prop.MultiSelect))
			for _, item := range prop.MultiSelect {
				names = append(names, item.Name)
			}
			extracted[key] = names
		case "title":
			parts := make([]string, 0, len(prop.Title))
			for _, item := range prop.Title {
				parts = append(parts, item.PlainText)
			}
			extracted[key] = strings.Join(parts, "\n")
		case "rich_text":
			parts := make([]string, 0, len(prop.RichText))
			for _, item := range prop.RichText {
				parts = append(parts, item.PlainText)
			}
			extracted[key] = strings.Join(parts, " ")
		case "number":
			if prop.Number != nil {
				extracted[key] = *prop.Number
			}
		case "checkbox":
			if prop.Checkbox != nil {
				extracted[key] = *prop.Checkbox
			}
		case "date":
			if prop.Date != nil {
				extracted[key] = map[string]string{
					"start": prop.Date.Start,
					"end":   prop.Date.End,
				}
			}
		default:
			var value interface{}
			if err := json.Unmarshal(msg, &value); err == nil {
				extracted[key] = value
			}
		}
	}
	return extracted
}
