// Package trello turns the cards of a Trello board into documents so that
// board knowledge flows through the same clean/chunk/index pipeline as
// Notion pages.
package trello

import (
	"fmt"
	"strings"

	"github.com/adlio/trello"

	"github.com/egobogo/notionrag/internal/document"
)

// Source builds documents from the cards of one Trello board.
type Source struct {
	Client  *trello.Client
	BoardID string
}

// NewSource constructs a Source for the given board.
func NewSource(apiKey, token, boardID string) *Source {
	return &Source{
		Client:  trello.NewClient(apiKey, token),
		BoardID: boardID,
	}
}

// FetchDocuments returns one document per card on the board. The card name
// and description become the content, checklist items render as to-do
// lines, and attachment URLs become the document's outbound links.
func (s *Source) FetchDocuments() ([]document.Document, error) {
	board, err := s.Client.GetBoard(s.BoardID, trello.Defaults())
	if err != nil {
		return nil, fmt.Errorf("failed to get board: %w", err)
	}
	cards, err := board.GetCards(trello.Arguments{
		"attachments": "true",
		"checklists":  "all",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}

	docs := make([]document.Document, 0, len(cards))
	for _, card := range cards {
		docs = append(docs, cardDocument(board, card))
	}
	return docs, nil
}

func cardDocument(board *trello.Board, card *trello.Card) document.Document {
	var content strings.Builder
	content.WriteString("# " + card.Name + "\n\n")
	if card.Desc != "" {
		content.WriteString(card.Desc + "\n")
	}
	for _, checklist := range card.Checklists {
		if checklist == nil {
			continue
		}
		content.WriteString("\n## " + checklist.Name + "\n")
		for _, item := range checklist.CheckItems {
			marker := "[]"
			if item.State == "complete" {
				marker = "[x]"
			}
			content.WriteString(marker + " " + item.Name + "\n")
		}
	}

	var links []string
	seen := make(map[string]bool)
	for _, attachment := range card.Attachments {
		if attachment == nil || attachment.URL == "" || seen[attachment.URL] {
			continue
		}
		seen[attachment.URL] = true
		links = append(links, attachment.URL)
	}

	labels := make([]string, 0, len(card.Labels))
	for _, label := range card.Labels {
		if label != nil && label.Name != "" {
			labels = append(labels, label.Name)
		}
	}

	return document.Document{
		ID: card.ID,
		Metadata: document.Metadata{
			ID:    card.ID,
			Title: card.Name,
			Properties: map[string]interface{}{
				"board":   board.Name,
				"list_id": card.IDList,
				"labels":  labels,
			},
			PageLink: card.ShortURL,
		},
		Content:   strings.TrimSpace(content.String()),
		ChildURLs: links,
		Category:  document.CategoryTrello,
	}
}
