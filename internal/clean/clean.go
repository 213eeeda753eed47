// Package clean normalizes extracted document text before it is chunked
// and embedded, while keeping the elements that matter for retrieval:
// headings, links, images and code blocks.
package clean

import (
	"regexp"
	"strings"
)

// DefaultMinLineLength is the shortest prose line worth keeping; shorter
// lines are usually navigation crumbs or stray markers.
const DefaultMinLineLength = 20

var (
	inlineLinkRe  = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	headingRe     = regexp.MustCompile(`(?m)^\s{0,3}(#{1,6})\s*(.+)$`)
	deepHeadingRe = regexp.MustCompile(`#{4,}`)
	codeFenceRe   = regexp.MustCompile("```[ \t]*(\\w*)[ \t]*\n")
	pageLinkRe    = regexp.MustCompile(`Page link:.*`)
	syncedMarkRe  = regexp.MustCompile(`\[Synced block (?:start|end)\]`)
	crlfRe        = regexp.MustCompile(`\r\n?`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
	spaceRunRe    = regexp.MustCompile(` {2,}`)

	emojiRe = regexp.MustCompile(`[` +
		`\x{1F600}-\x{1F64F}` + // emoticons
		`\x{1F300}-\x{1F5FF}` + // symbols & pictographs
		`\x{1F680}-\x{1F6FF}` + // transport & map symbols
		`\x{1F700}-\x{1F77F}` + // alchemical symbols
		`\x{1F780}-\x{1F7FF}` + // geometric shapes
		`\x{1F800}-\x{1F8FF}` + // supplemental arrows
		`\x{1F900}-\x{1F9FF}` + // supplemental pictographs
		`\x{1FA00}-\x{1FA6F}` + // chess symbols
		`\x{1FA70}-\x{1FAFF}` + // pictographs extended
		`\x{2702}-\x{27B0}` + // dingbats
		`\x{24C2}-\x{1F251}` +
		`]+`)
)

// Text cleans raw extracted content for embedding and vector search.
// Inline links become "text | url", headings are normalized and capped at
// three levels, pipeline boilerplate is removed, whitespace is squeezed,
// emojis are stripped and tiny prose lines are dropped. Code blocks and
// headings survive the line filter untouched.
func Text(raw string, minLineLength int) string {
	if minLineLength <= 0 {
		minLineLength = DefaultMinLineLength
	}
	text := raw

	text = inlineLinkRe.ReplaceAllString(text, "$1 | $2")
	text = headingRe.ReplaceAllString(text, "$1 $2")
	text = deepHeadingRe.ReplaceAllString(text, "###")
	text = codeFenceRe.ReplaceAllString(text, "```$1\n")

	text = pageLinkRe.ReplaceAllString(text, "")
	text = syncedMarkRe.ReplaceAllString(text, "")

	text = strings.ReplaceAll(text, "\t", " ")
	text = crlfRe.ReplaceAllString(text, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	text = spaceRunRe.ReplaceAllString(text, " ")

	text = emojiRe.ReplaceAllString(text, "")

	var lines []string
	inCodeBlock := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inCodeBlock = !inCodeBlock
			lines = append(lines, trimmed)
			continue
		}
		if inCodeBlock {
			// Keep original indentation inside code blocks.
			lines = append(lines, line)
			continue
		}
		if len(trimmed) >= minLineLength || strings.HasPrefix(trimmed, "#") {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}
