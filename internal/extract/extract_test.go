package extract

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/egobogo/notionrag/internal/document"
	"github.com/egobogo/notionrag/internal/notion"
)

// fakeFetcher serves block children from an in-memory tree and counts how
// often each node is fetched.
type fakeFetcher struct {
	children map[string][]notion.Block
	calls    map[string]int
	failing  map[string]bool
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		children: make(map[string][]notion.Block),
		calls:    make(map[string]int),
		failing:  make(map[string]bool),
	}
}

func (f *fakeFetcher) FetchBlockChildren(blockID string) ([]notion.Block, error) {
	f.calls[blockID]++
	if f.failing[blockID] {
		return nil, errors.New("fetch failed")
	}
	return f.children[blockID], nil
}

func runs(text string) []notion.RichText {
	return []notion.RichText{{PlainText: text}}
}

func paragraph(id, text string) notion.Block {
	return notion.Block{
		ID:        id,
		Type:      notion.TypeParagraph,
		Paragraph: &notion.RichTextBody{RichText: runs(text)},
	}
}

func childPage(id, title string) notion.Block {
	return notion.Block{
		ID:          id,
		Type:        notion.TypeChildPage,
		HasChildren: true,
		ChildPage:   &notion.TitleBody{Title: title},
	}
}

func TestFlattenFlatBlocks(t *testing.T) {
	f := newFakeFetcher()
	f.children["root"] = []notion.Block{
		{ID: "b1", Type: notion.TypeHeading1, Heading1: &notion.RichTextBody{RichText: runs("Title")}},
		{ID: "b2", Type: notion.TypeHeading2, Heading2: &notion.RichTextBody{RichText: runs("Sub")}},
		{ID: "b3", Type: notion.TypeHeading3, Heading3: &notion.RichTextBody{RichText: runs("Deep")}},
		paragraph("b4", "Hello"),
		{ID: "b5", Type: notion.TypeQuote, Quote: &notion.RichTextBody{RichText: runs("Wise")}},
		{ID: "b6", Type: notion.TypeBulletedListItem, BulletedListItem: &notion.RichTextBody{RichText: runs("bullet")}},
		{ID: "b7", Type: notion.TypeNumberedListItem, NumberedListItem: &notion.RichTextBody{RichText: runs("numbered")}},
		{ID: "b8", Type: notion.TypeToDo, ToDo: &notion.RichTextBody{RichText: runs("task")}},
		{ID: "b9", Type: notion.TypeDivider},
		{ID: "b10", Type: notion.TypeChildDatabase, ChildDatabase: &notion.TitleBody{Title: "Projects"}},
		{ID: "b11", Type: notion.TypeCode, Code: &notion.RichTextBody{RichText: runs("x = 1")}},
	}

	got := New(f).Flatten("root")

	want := "# Title\n\n" +
		"## Sub\n\n" +
		"### Deep\n\n" +
		"Hello\n" +
		"Wise\n" +
		"- bullet\n" +
		"1. numbered\n" +
		"[] task\n" +
		"---\n\n" +
		"**Database:** Projects\n" +
		"```\nx = 1\n```"
	if got.Text != want {
		t.Errorf("unexpected text:\n%q\nwant:\n%q", got.Text, want)
	}
	if len(got.Links) != 0 {
		t.Errorf("expected no links, got %v", got.Links)
	}
	if f.calls["root"] != 1 {
		t.Errorf("expected a single fetch for a flat tree, got %d", f.calls["root"])
	}
}

func TestFlattenEmptyAndFailedRoot(t *testing.T) {
	f := newFakeFetcher()
	got := New(f).Flatten("missing")
	if got.Text != "" || len(got.Links) != 0 {
		t.Errorf("empty tree should flatten to an empty result, got %+v", got)
	}

	f.failing["broken"] = true
	got = New(f).Flatten("broken")
	if got.Text != "" || len(got.Links) != 0 {
		t.Errorf("failed fetch should flatten to an empty result, got %+v", got)
	}
}

func TestUnknownBlockTypeIsSkipped(t *testing.T) {
	f := newFakeFetcher()
	f.children["root"] = []notion.Block{
		{ID: "u1", Type: notion.BlockType("unsupported_widget")},
		paragraph("p1", "after"),
	}

	got := New(f).Flatten("root")
	if got.Text != "after" {
		t.Errorf("unknown block should render nothing, got %q", got.Text)
	}
	if len(got.Links) != 0 {
		t.Errorf("unknown block should contribute no links, got %v", got.Links)
	}
}

func TestToggleChildrenIndentation(t *testing.T) {
	f := newFakeFetcher()
	f.children["root"] = []notion.Block{
		{
			ID:          "tg",
			Type:        notion.TypeToggle,
			HasChildren: true,
			Toggle:      &notion.RichTextBody{RichText: runs("toggle")},
		},
	}
	f.children["tg"] = []notion.Block{
		paragraph("c1", "line1"),
		paragraph("c2", "line2"),
	}

	got := New(f).Flatten("root")
	want := "- toggle\n\n    line1\n    line2"
	if got.Text != want {
		t.Errorf("unexpected toggle rendering:\n%q\nwant:\n%q", got.Text, want)
	}
	for _, line := range []string{"    line1", "    line2"} {
		if !strings.Contains(got.Text, line) {
			t.Errorf("expected %q nested under the toggle line", line)
		}
	}
}

func TestTableRendering(t *testing.T) {
	f := newFakeFetcher()
	f.children["root"] = []notion.Block{
		{
			ID:   "tb",
			Type: notion.TypeTable,
			Table: &notion.TableBody{Rows: [][]notion.TableCell{
				{{RichText: runs("A")}, {RichText: runs("B")}},
				{{RichText: runs("1")}, {RichText: runs("2")}},
			}},
		},
	}

	got := New(f).Flatten("root")
	want := "| A | B |\n| --- | --- |\n| 1 | 2 |"
	if got.Text != want {
		t.Errorf("unexpected table rendering:\n%q\nwant:\n%q", got.Text, want)
	}
}

func TestStandaloneTableRow(t *testing.T) {
	f := newFakeFetcher()
	f.children["root"] = []notion.Block{
		{
			ID:   "tr",
			Type: notion.TypeTableRow,
			TableRow: &notion.TableRowBody{Cells: [][]notion.RichText{
				runs("left"), runs("right"),
			}},
		},
	}

	got := New(f).Flatten("root")
	if got.Text != "| left | right |" {
		t.Errorf("unexpected table row rendering: %q", got.Text)
	}
}

func TestChildPageExpansion(t *testing.T) {
	f := newFakeFetcher()
	f.children["root"] = []notion.Block{childPage("cp-1", "Page One")}
	f.children["cp-1"] = []notion.Block{paragraph("p1", "inner")}

	got := New(f).Flatten("root")
	want := "<subpage>\n# Page One\n\ninner\n</subpage>"
	if got.Text != want {
		t.Errorf("unexpected child page rendering:\n%q\nwant:\n%q", got.Text, want)
	}
	wantLinks := []string{"https://www.notion.so/cp1"}
	if !reflect.DeepEqual(got.Links, wantLinks) {
		t.Errorf("unexpected links %v, want %v", got.Links, wantLinks)
	}
}

func TestChildPageDepthBound(t *testing.T) {
	f := newFakeFetcher()
	f.children["root"] = []notion.Block{childPage("p1", "P1")}
	f.children["p1"] = []notion.Block{childPage("p2", "P2")}
	f.children["p2"] = []notion.Block{childPage("p3", "P3")}
	f.children["p3"] = []notion.Block{childPage("p4", "P4")}
	f.children["p4"] = []notion.Block{paragraph("deep", "too deep")}

	got := New(f).Flatten("root")

	// p4 sits at depth 3: its title appears as a stub, its URL is still
	// contributed, and no fetch happens for its own children.
	if f.calls["p4"] != 0 {
		t.Errorf("child page beyond the depth bound must not be fetched, got %d calls", f.calls["p4"])
	}
	if strings.Contains(got.Text, "too deep") {
		t.Errorf("content beyond the depth bound leaked into the output:\n%q", got.Text)
	}
	if !strings.Contains(got.Text, "# P4") {
		t.Errorf("expected a stub for the bounded child page:\n%q", got.Text)
	}
	found := false
	for _, link := range got.Links {
		if link == "https://www.notion.so/p4" {
			found = true
		}
	}
	if !found {
		t.Errorf("bounded child page must still contribute its URL, got %v", got.Links)
	}
}

func TestColumnsSpliceAtSameDepth(t *testing.T) {
	f := newFakeFetcher()
	f.children["root"] = []notion.Block{
		{ID: "cl", Type: notion.TypeColumnList, HasChildren: true},
	}
	f.children["cl"] = []notion.Block{
		{ID: "c1", Type: notion.TypeColumn, HasChildren: true},
	}
	f.children["c1"] = []notion.Block{paragraph("p1", "in column")}

	got := New(f).Flatten("root")
	if got.Text != "in column" {
		t.Errorf("column content should splice in unindented, got %q", got.Text)
	}
	if f.calls["cl"] != 1 || f.calls["c1"] != 1 {
		t.Errorf("each column wrapper should be expanded exactly once: %v", f.calls)
	}
}

func TestSyncedBlockMarkers(t *testing.T) {
	f := newFakeFetcher()
	f.children["root"] = []notion.Block{
		{ID: "sb", Type: notion.TypeSyncedBlock, HasChildren: true},
	}
	f.children["sb"] = []notion.Block{paragraph("p1", "shared")}

	got := New(f).Flatten("root")
	want := "[Synced block start]\nshared\n[Synced block end]"
	if got.Text != want {
		t.Errorf("unexpected synced block rendering:\n%q\nwant:\n%q", got.Text, want)
	}
}

func TestCalloutRendering(t *testing.T) {
	f := newFakeFetcher()
	f.children["root"] = []notion.Block{
		{
			ID:          "co",
			Type:        notion.TypeCallout,
			HasChildren: true,
			Callout: &notion.CalloutBody{
				RichText: []notion.RichText{{PlainText: "Note", Href: "https://c.example.com"}},
				Icon:     &notion.Icon{Type: "emoji", Emoji: "💡"},
			},
		},
	}
	f.children["co"] = []notion.Block{paragraph("p1", "hidden")}

	got := New(f).Flatten("root")
	want := "> 💡 [Note](https://c.example.com)"
	if got.Text != want {
		t.Errorf("unexpected callout rendering:\n%q\nwant:\n%q", got.Text, want)
	}
	if !reflect.DeepEqual(got.Links, []string{"https://c.example.com/"}) {
		t.Errorf("callout links not harvested: %v", got.Links)
	}
	if f.calls["co"] != 0 {
		t.Errorf("callout children must not be expanded, got %d calls", f.calls["co"])
	}
}

func TestGenericFallbackIndentsWithTab(t *testing.T) {
	f := newFakeFetcher()
	parent := paragraph("p", "parent")
	parent.HasChildren = true
	f.children["root"] = []notion.Block{parent}
	f.children["p"] = []notion.Block{paragraph("c", "child")}

	got := New(f).Flatten("root")
	want := "parent\n\tchild"
	if got.Text != want {
		t.Errorf("unexpected fallback rendering:\n%q\nwant:\n%q", got.Text, want)
	}
}

func TestResourceBlocks(t *testing.T) {
	f := newFakeFetcher()
	f.children["root"] = []notion.Block{
		{ID: "b1", Type: notion.TypePDF, PDF: &notion.FileBody{
			External: &notion.URLRef{URL: "https://ext.example.com/doc.pdf"},
			File:     &notion.URLRef{URL: "https://file.example.com/doc.pdf"},
		}},
		{ID: "b2", Type: notion.TypeEmbed, Embed: &notion.URLBody{URL: "https://embed.example.com"}},
		{ID: "b3", Type: notion.TypeLinkPreview, LinkPreview: &notion.URLBody{URL: "https://preview.example.com"}},
		{ID: "b4", Type: notion.TypeImage, Image: &notion.FileBody{
			File:    &notion.URLRef{URL: "https://img.example.com/a.png"},
			Caption: runs("Chart"),
		}},
		{ID: "b5", Type: notion.TypeImage, Image: &notion.FileBody{
			External: &notion.URLRef{URL: "https://img.example.com/b.png"},
		}},
	}

	got := New(f).Flatten("root")

	want := "[PDF](https://ext.example.com/doc.pdf)\n" +
		"[Embed](https://embed.example.com)\n" +
		"[Link](https://preview.example.com)\n" +
		"![Chart](https://img.example.com/a.png)\n" +
		"![Image](https://img.example.com/b.png)"
	if got.Text != want {
		t.Errorf("unexpected resource rendering:\n%q\nwant:\n%q", got.Text, want)
	}

	// The external URL wins for the PDF, the preview URL is normalized,
	// and image URLs stay out of the link list.
	wantLinks := []string{
		"https://ext.example.com/doc.pdf",
		"https://embed.example.com",
		"https://preview.example.com/",
	}
	if !reflect.DeepEqual(got.Links, wantLinks) {
		t.Errorf("unexpected links %v, want %v", got.Links, wantLinks)
	}
}

func TestLinkDeduplicationIsStable(t *testing.T) {
	f := newFakeFetcher()
	f.children["root"] = []notion.Block{
		{ID: "b1", Type: notion.TypeParagraph, Paragraph: &notion.RichTextBody{RichText: []notion.RichText{
			{PlainText: "first", Href: "https://a.example.com"},
		}}},
		{ID: "b2", Type: notion.TypeParagraph, Paragraph: &notion.RichTextBody{RichText: []notion.RichText{
			{PlainText: "second", Href: "https://b.example.com"},
		}}},
		{ID: "b3", Type: notion.TypeParagraph, Paragraph: &notion.RichTextBody{RichText: []notion.RichText{
			{PlainText: "again", Href: "https://a.example.com"},
		}}},
	}

	fl := New(f)
	first := fl.Flatten("root")
	wantLinks := []string{"https://a.example.com/", "https://b.example.com/"}
	if !reflect.DeepEqual(first.Links, wantLinks) {
		t.Errorf("unexpected links %v, want %v", first.Links, wantLinks)
	}

	second := fl.Flatten("root")
	if !reflect.DeepEqual(first.Links, second.Links) {
		t.Errorf("link order must be stable across runs: %v vs %v", first.Links, second.Links)
	}
}

func TestRenderRuns(t *testing.T) {
	got := RenderRuns([]notion.RichText{
		{PlainText: "see "},
		{PlainText: "docs", Href: "https://docs.example.com"},
		{PlainText: " here"},
	})
	want := "see [docs](https://docs.example.com) here"
	if got != want {
		t.Errorf("RenderRuns = %q, want %q", got, want)
	}
}

func TestHarvestLinksPriority(t *testing.T) {
	got := HarvestLinks([]notion.RichText{
		{
			PlainText:   "both",
			Href:        "https://x",
			Annotations: notion.Annotations{URL: "https://y"},
		},
		{
			PlainText:   "annotation only",
			Annotations: notion.Annotations{URL: "https://y"},
		},
		{PlainText: "no link"},
	})
	want := []string{"https://x/", "https://y/"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("HarvestLinks = %v, want %v", got, want)
	}
}

func TestExtractContent(t *testing.T) {
	f := newFakeFetcher()
	f.children["page-1"] = []notion.Block{paragraph("p1", "body")}

	meta := document.Metadata{
		ID:    "page-1",
		Title: "Page",
		Properties: map[string]interface{}{
			"Status": "Done",
			"parent": document.Metadata{ID: "db-1"},
		},
		PageLink: "https://www.notion.so/page1",
	}

	doc := NewExtractor(f).ExtractContent(meta)
	if doc.Content != "body" {
		t.Errorf("unexpected content %q", doc.Content)
	}
	if doc.ParentMetadata == nil || doc.ParentMetadata.ID != "db-1" {
		t.Errorf("parent metadata not lifted: %+v", doc.ParentMetadata)
	}
	if _, ok := doc.Metadata.Properties["parent"]; ok {
		t.Errorf("parent should be removed from properties")
	}
	if doc.Category != document.CategoryNotion {
		t.Errorf("unexpected category %q", doc.Category)
	}
}
