package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainTextStripsTagsAndEntities(t *testing.T) {
	html := `<p style="margin:0;">Ben &amp; Jerry say &quot;hi&quot;&nbsp;&lt;here&gt;</p>`

	assert.Equal(t, `Ben & Jerry say "hi" <here>`, PlainText(html))
}

func TestPlainTextAmpersandUnescapedLast(t *testing.T) {
	// &amp;lt; must become the literal text "&lt;", not "<".
	assert.Equal(t, "&lt;", PlainText("&amp;lt;"))
}

func TestPlainTextStripsStyleAndScriptBlocks(t *testing.T) {
	html := `<style>p { color: red; }</style><p>kept</p><script>alert(1)</script>`

	assert.Equal(t, "kept", PlainText(html))
}

func TestPlainTextCollapsesBlankRuns(t *testing.T) {
	html := "<p>one</p>\n\n\n   \n\n<p>two</p>"

	assert.Equal(t, "one\n\ntwo", PlainText(html))
}
