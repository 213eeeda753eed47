// Package extract flattens a page's block tree into linear text plus the
// list of outbound resource URLs discovered anywhere in the tree.
package extract

import (
	"log/slog"
	"strings"

	"github.com/egobogo/notionrag/internal/notion"
)

// Fetcher supplies the ordered immediate children of a node. Pagination and
// retries live behind this interface; the flattener treats any error as an
// empty child list.
type Fetcher interface {
	FetchBlockChildren(blockID string) ([]notion.Block, error)
}

// Result is the flattener's sole output: the trimmed rendering of a subtree
// in document order, and every resource URL encountered in it, deduplicated
// in first-seen order.
type Result struct {
	Text  string
	Links []string
}

// maxChildPageDepth bounds recursive expansion of child_page blocks only.
// In-page containers (toggles, columns, synced blocks) always expand; they
// terminate naturally once the API returns no children. Child pages can
// chain across an entire workspace, so their expansion is capped.
const maxChildPageDepth = 3

// Flattener walks a block tree depth-first through a Fetcher and renders it.
// It holds no state outside a single call's stack, so one Flattener may be
// used from any number of goroutines.
type Flattener struct {
	fetcher Fetcher
}

// New creates a Flattener over the given Fetcher.
func New(fetcher Fetcher) *Flattener {
	return &Flattener{fetcher: fetcher}
}

// Flatten renders the full subtree under rootID. It never fails: a fetch
// error on the root yields an empty Result.
func (f *Flattener) Flatten(rootID string) Result {
	return f.flatten(rootID, 0)
}

func (f *Flattener) flatten(rootID string, depth int) Result {
	children, err := f.fetcher.FetchBlockChildren(rootID)
	if err != nil {
		// The fetcher already logged the condition; an unreachable
		// subtree renders the same as an empty one.
		slog.Debug("treating failed fetch as empty subtree", "block_id", rootID)
		return Result{}
	}

	var content strings.Builder
	var links []string

	for _, block := range children {
		// Set by branches that expand children themselves, so the
		// generic fallback below does not expand them a second time.
		handledChildren := false

		switch block.Type {
		case notion.TypeHeading1:
			content.WriteString("# " + RenderRuns(block.Heading1.Runs()) + "\n\n")
			links = append(links, HarvestLinks(block.Heading1.Runs())...)

		case notion.TypeHeading2:
			content.WriteString("## " + RenderRuns(block.Heading2.Runs()) + "\n\n")
			links = append(links, HarvestLinks(block.Heading2.Runs())...)

		case notion.TypeHeading3:
			content.WriteString("### " + RenderRuns(block.Heading3.Runs()) + "\n\n")
			links = append(links, HarvestLinks(block.Heading3.Runs())...)

		case notion.TypeParagraph:
			content.WriteString(RenderRuns(block.Paragraph.Runs()) + "\n")
			links = append(links, HarvestLinks(block.Paragraph.Runs())...)

		case notion.TypeQuote:
			content.WriteString(RenderRuns(block.Quote.Runs()) + "\n")
			links = append(links, HarvestLinks(block.Quote.Runs())...)

		case notion.TypeBulletedListItem:
			content.WriteString("- " + RenderRuns(block.BulletedListItem.Runs()) + "\n")
			links = append(links, HarvestLinks(block.BulletedListItem.Runs())...)

		case notion.TypeNumberedListItem:
			content.WriteString("1. " + RenderRuns(block.NumberedListItem.Runs()) + "\n")
			links = append(links, HarvestLinks(block.NumberedListItem.Runs())...)

		case notion.TypeToggle:
			content.WriteString("- " + RenderRuns(block.Toggle.Runs()) + "\n")
			links = append(links, HarvestLinks(block.Toggle.Runs())...)
			if block.HasChildren {
				nested := f.flatten(block.ID, depth+1)
				content.WriteString("\n" + indentLines(nested.Text, "    ") + "\n")
				links = append(links, nested.Links...)
				handledChildren = true
			}

		case notion.TypeToDo:
			content.WriteString("[] " + RenderRuns(block.ToDo.Runs()) + "\n")
			links = append(links, HarvestLinks(block.ToDo.Runs())...)

		case notion.TypePDF:
			url := block.PDF.ResolveURL()
			content.WriteString("[PDF](" + url + ")\n")
			if url != "" {
				links = append(links, url)
			}

		case notion.TypeCode:
			content.WriteString("```\n" + RenderRuns(block.Code.Runs()) + "\n```\n")
			links = append(links, HarvestLinks(block.Code.Runs())...)

		case notion.TypeEmbed:
			url := ""
			if block.Embed != nil {
				url = block.Embed.URL
			}
			content.WriteString("[Embed](" + url + ")\n")
			if url != "" {
				links = append(links, url)
			}

		case notion.TypeImage:
			// Images render inline instead of being treated as
			// outbound references, so their URL stays out of links.
			url := block.Image.ResolveURL()
			if url == "" {
				url = "No URL"
			}
			caption := ""
			if block.Image != nil {
				caption = RenderRuns(block.Image.Caption)
			}
			if caption == "" {
				caption = "Image"
			}
			content.WriteString("![" + caption + "](" + url + ")\n")

		case notion.TypeLinkPreview:
			url := ""
			if block.LinkPreview != nil {
				url = block.LinkPreview.URL
			}
			content.WriteString("[Link](" + url + ")\n")
			if url != "" {
				links = append(links, StandardizeURL(url))
			}

		case notion.TypeTable:
			if block.Table != nil && len(block.Table.Rows) > 0 {
				rows := block.Table.Rows
				headers := make([]string, 0, len(rows[0]))
				for _, cell := range rows[0] {
					headers = append(headers, RenderRuns(cell.RichText))
				}
				content.WriteString("| " + strings.Join(headers, " | ") + " |\n")
				separators := make([]string, len(headers))
				for i := range separators {
					separators[i] = "---"
				}
				content.WriteString("| " + strings.Join(separators, " | ") + " |\n")
				for _, row := range rows[1:] {
					cells := make([]string, 0, len(row))
					for _, cell := range row {
						cells = append(cells, RenderRuns(cell.RichText))
					}
					content.WriteString("| " + strings.Join(cells, " | ") + " |\n")
				}
			}
			content.WriteString("\n")

		case notion.TypeTableRow:
			// A table_row outside a table context still renders as a
			// single delimited row.
			var cells []string
			if block.TableRow != nil {
				for _, cell := range block.TableRow.Cells {
					cells = append(cells, RenderRuns(cell))
				}
			}
			content.WriteString("| " + strings.Join(cells, " | ") + " |\n")

		case notion.TypeColumnList, notion.TypeColumn:
			// Structural wrappers, not semantic nesting: expand at the
			// same depth and splice the rendering in directly.
			if block.HasChildren {
				nested := f.flatten(block.ID, depth)
				content.WriteString(nested.Text + "\n")
				links = append(links, nested.Links...)
			}
			handledChildren = true

		case notion.TypeChildDatabase:
			title := ""
			if block.ChildDatabase != nil {
				title = block.ChildDatabase.Title
			}
			content.WriteString("**Database:** " + title + "\n")

		case notion.TypeDivider:
			content.WriteString("---\n\n")

		case notion.TypeChildPage:
			title := "Untitled"
			if block.ChildPage != nil && block.ChildPage.Title != "" {
				title = block.ChildPage.Title
			}
			// The derived page URL is contributed regardless of depth.
			links = append(links, notion.PageURL(block.ID))
			if depth < maxChildPageDepth {
				content.WriteString("\n\n<subpage>\n# " + title + "\n\n")
				nested := f.flatten(block.ID, depth+1)
				content.WriteString(nested.Text + "\n</subpage>\n\n")
				links = append(links, nested.Links...)
			} else {
				// Past the bound the page is stubbed: its title still
				// appears but no further fetches happen for it.
				content.WriteString("\n\n<subpage>\n# " + title + "\n</subpage>\n\n")
			}
			handledChildren = true

		case notion.TypeSyncedBlock:
			content.WriteString("[Synced block start]\n")
			if block.HasChildren {
				nested := f.flatten(block.ID, depth+1)
				content.WriteString(nested.Text + "\n[Synced block end]\n\n")
				links = append(links, nested.Links...)
				handledChildren = true
			}

		case notion.TypeCallout:
			prefix := ""
			if block.Callout != nil && block.Callout.Icon != nil && block.Callout.Icon.Type == "emoji" {
				prefix = block.Callout.Icon.Emoji + " "
			}
			var runs []notion.RichText
			if block.Callout != nil {
				runs = block.Callout.RichText
			}
			content.WriteString("> " + prefix + RenderRuns(runs) + "\n\n")
			links = append(links, HarvestLinks(runs)...)
			handledChildren = true

		default:
			slog.Debug("skipping unsupported block type", "type", string(block.Type), "block_id", block.ID)
		}

		// Any block type not expanded above that still reports children
		// gets one generic expansion so its subtree is not dropped.
		if block.Type != notion.TypeChildPage && !handledChildren && block.HasChildren {
			nested := f.flatten(block.ID, depth+1)
			content.WriteString(indentLines(nested.Text, "\t") + "\n\n")
			links = append(links, nested.Links...)
		}
	}

	return Result{
		Text:  strings.TrimSpace(content.String()),
		Links: dedupeLinks(links),
	}
}
