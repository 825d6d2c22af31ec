package markdown

import (
	"regexp"
	"strings"
)

var (
	styleBlockRe = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	scriptRe     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	blankRunRe   = regexp.MustCompile(`\n\s*\n`)
)

// PlainText derives the plain text fallback of an HTML email body: style
// and script blocks go first, then tags, then the five standard entities
// are unescaped, and blank-line runs collapse to a single blank line.
func PlainText(html string) string {
	text := styleBlockRe.ReplaceAllString(html, "")
	text = scriptRe.ReplaceAllString(text, "")
	text = tagRe.ReplaceAllString(text, "")

	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&quot;", `"`)
	text = strings.ReplaceAll(text, "&#39;", "'")
	text = strings.ReplaceAll(text, "&amp;", "&")

	for {
		collapsed := blankRunRe.ReplaceAllString(text, "\n\n")
		if collapsed == text {
			break
		}
		text = collapsed
	}

	return strings.TrimSpace(text)
}
