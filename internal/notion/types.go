package notion

// BlockType tags a block with its payload kind. The Notion API sends the
// payload under a JSON key equal to the type string, so every recognized
// type has a matching optional field on Block.
type BlockType string

const (
	TypeHeading1         BlockType = "heading_1"
	TypeHeading2         BlockType = "heading_2"
	TypeHeading3         BlockType = "heading_3"
	TypeParagraph        BlockType = "paragraph"
	TypeQuote            BlockType = "quote"
	TypeBulletedListItem BlockType = "bulleted_list_item"
	TypeNumberedListItem BlockType = "numbered_list_item"
	TypeToggle           BlockType = "toggle"
	TypeToDo             BlockType = "to_do"
	TypePDF              BlockType = "pdf"
	TypeCode             BlockType = "code"
	TypeEmbed            BlockType = "embed"
	TypeImage            BlockType = "image"
	TypeLinkPreview      BlockType = "link_preview"
	TypeTable            BlockType = "table"
	TypeTableRow         BlockType = "table_row"
	TypeColumnList       BlockType = "column_list"
	TypeColumn           BlockType = "column"
	TypeChildDatabase    BlockType = "child_database"
	TypeDivider          BlockType = "divider"
	TypeChildPage        BlockType = "child_page"
	TypeSyncedBlock      BlockType = "synced_block"
	TypeCallout          BlockType = "callout"
)

// RichText is one span of inline content: plain text with an optional
// hyperlink target and optional annotation-level link.
type RichText struct {
	PlainText   string      `json:"plain_text"`
	Href        string      `json:"href,omitempty"`
	Annotations Annotations `json:"annotations,omitempty"`
}

// Annotations carries the styling flags Notion attaches to a rich text run.
// Only URL matters for link harvesting; the rest are kept for fidelity.
type Annotations struct {
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
	Code   bool   `json:"code,omitempty"`
	URL    string `json:"url,omitempty"`
}

// RichTextBody is the payload shared by every text-bearing block type.
type RichTextBody struct {
	RichText []RichText `json:"rich_text"`
}

// Runs returns the rich text runs of a possibly missing payload. A nil
// receiver stands for a malformed block and yields no runs.
func (b *RichTextBody) Runs() []RichText {
	if b == nil {
		return nil
	}
	return b.RichText
}

// URLRef wraps a single URL, matching Notion's {"url": ...} objects.
type URLRef struct {
	URL string `json:"url"`
}

// FileBody is the payload of file-backed blocks (pdf, image). Exactly one
// of External or File is populated by the API.
type FileBody struct {
	External *URLRef    `json:"external,omitempty"`
	File     *URLRef    `json:"file,omitempty"`
	Caption  []RichText `json:"caption,omitempty"`
}

// ResolveURL picks the resource URL, preferring the external URL over the
// internal file URL when both are present.
func (b *FileBody) ResolveURL() string {
	if b == nil {
		return ""
	}
	if b.External != nil && b.External.URL != "" {
		return b.External.URL
	}
	if b.File != nil {
		return b.File.URL
	}
	return ""
}

// URLBody is the payload of embed and link_preview blocks.
type URLBody struct {
	URL string `json:"url"`
}

// TableCell is one cell of a table row.
type TableCell struct {
	RichText []RichText `json:"rich_text"`
}

// TableBody is the payload of a table block: ordered rows of cells.
type TableBody struct {
	Rows [][]TableCell `json:"rows"`
}

// TableRowBody is the payload of a standalone table_row block, where each
// cell is a bare list of rich text runs.
type TableRowBody struct {
	Cells [][]RichText `json:"cells"`
}

// TitleBody is the payload of child_page and child_database blocks.
type TitleBody struct {
	Title string `json:"title"`
}

// Icon is the optional icon attached to a callout.
type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

// CalloutBody is the payload of a callout block.
type CalloutBody struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
}

// Block is one node of a page's content tree. Type determines which of the
// payload fields is meaningful; unrecognized types decode with all payload
// fields nil and are skipped by consumers.
type Block struct {
	ID          string    `json:"id"`
	Type        BlockType `json:"type"`
	HasChildren bool      `json:"has_children"`

	Heading1         *RichTextBody `json:"heading_1,omitempty"`
	Heading2         *RichTextBody `json:"heading_2,omitempty"`
	Heading3         *RichTextBody `json:"heading_3,omitempty"`
	Paragraph        *RichTextBody `json:"paragraph,omitempty"`
	Quote            *RichTextBody `json:"quote,omitempty"`
	BulletedListItem *RichTextBody `json:"bulleted_list_item,omitempty"`
	NumberedListItem *RichTextBody `json:"numbered_list_item,omitempty"`
	Toggle           *RichTextBody `json:"toggle,omitempty"`
	ToDo             *RichTextBody `json:"to_do,omitempty"`
	Code             *RichTextBody `json:"code,omitempty"`
	PDF              *FileBody     `json:"pdf,omitempty"`
	Embed            *URLBody      `json:"embed,omitempty"`
	Image            *FileBody     `json:"image,omitempty"`
	LinkPreview      *URLBody      `json:"link_preview,omitempty"`
	Table            *TableBody    `json:"table,omitempty"`
	TableRow         *TableRowBody `json:"table_row,omitempty"`
	ChildDatabase    *TitleBody    `json:"child_database,omitempty"`
	ChildPage        *TitleBody    `json:"child_page,omitempty"`
	SyncedBlock      *struct{}     `json:"synced_block,omitempty"`
	Callout          *CalloutBody  `json:"callout,omitempty"`
}
