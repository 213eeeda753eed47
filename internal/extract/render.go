package extract

import (
	"fmt"
	"strings"

	"github.com/egobogo/notionrag/internal/notion"
)

// RenderRuns concatenates rich text runs in order. A run that carries a
// hyperlink renders in bracketed-link form, otherwise as plain text. No
// trimming happens here.
func RenderRuns(runs []notion.RichText) string {
	var b strings.Builder
	for _, run := range runs {
		if run.Href != "" {
			b.WriteString(fmt.Sprintf("[%s](%s)", run.PlainText, run.Href))
		} else {
			b.WriteString(run.PlainText)
		}
	}
	return b.String()
}

// HarvestLinks collects the URLs referenced by rich text runs, preferring
// the explicit hyperlink over an annotation-level URL. Order is preserved
// and duplicates are kept; deduplication happens once at the top level.
func HarvestLinks(runs []notion.RichText) []string {
	var links []string
	for _, run := range runs {
		link := run.Href
		if link == "" {
			link = run.Annotations.URL
		}
		if link != "" {
			links = append(links, StandardizeURL(link))
		}
	}
	return links
}

// StandardizeURL ensures a URL ends with a trailing separator.
func StandardizeURL(url string) string {
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return url
}

// indentLines prefixes every line of text, including empty ones, with the
// given indentation unit.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// dedupeLinks removes duplicates while preserving first-seen order.
func dedupeLinks(links []string) []string {
	seen := make(map[string]bool, len(links))
	var unique []string
	for _, link := range links {
		if !seen[link] {
			seen[link] = true
			unique = append(unique, link)
		}
	}
	return unique
}
