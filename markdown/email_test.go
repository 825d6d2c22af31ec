package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderEmailInlineStyles(t *testing.T) {
	r := NewRenderer()

	content := strings.Join([]string{
		"# Title",
		"",
		"## Section",
		"",
		"A paragraph with **bold**, *italic* and `code`.",
		"",
		"- first",
		"- second",
		"",
		"1. one",
		"2. two",
		"",
		"> a quote",
		"",
		"```go",
		"fmt.Println(\"hi\")",
		"```",
		"",
		"---",
		"",
		"[a link](https://example.com/page)",
	}, "\n")

	html, text := r.RenderEmail(content)

	assert.Contains(t, html, `<h1 style="`+headingStyles[1]+`">Title</h1>`)
	assert.Contains(t, html, `<h2 style="`+headingStyles[2]+`">Section</h2>`)
	assert.Contains(t, html, `<p style="`+styleParagraph+`">`)
	assert.Contains(t, html, `<strong style="`+styleStrong+`">bold</strong>`)
	assert.Contains(t, html, `<em style="`+styleEm+`">italic</em>`)
	assert.Contains(t, html, `<code style="`+styleCode+`">code</code>`)
	assert.Contains(t, html, `<ul style="`+styleList+`">`)
	assert.Contains(t, html, `<ol style="`+styleList+`">`)
	assert.Contains(t, html, `<li style="`+styleListItem+`">first</li>`)
	assert.Contains(t, html, `<blockquote style="`+styleBlockquote+`">`)
	assert.Contains(t, html, `<pre style="`+stylePre+`">`)
	assert.Contains(t, html, "fmt.Println(&quot;hi&quot;)")
	assert.Contains(t, html, `<hr style="`+styleHr+`">`)
	assert.Contains(t, html, `<a href="https://example.com/page" style="`+styleLink+`">a link</a>`)

	assert.Contains(t, text, "Title")
	assert.Contains(t, text, `fmt.Println("hi")`)
	assert.NotContains(t, text, "<strong")
}

func TestRenderEmailStripsComponents(t *testing.T) {
	r := NewRenderer()

	content := strings.Join([]string{
		"import { Chart } from '@/components/chart'",
		"",
		"# Title",
		"",
		"<Chart data={stats} />",
		"",
		"Text before <Callout>and inline residue</Callout> after.",
		"",
		"export default Layout",
	}, "\n")

	html, _ := r.RenderEmail(content)

	assert.NotContains(t, html, "Chart")
	assert.NotContains(t, html, "import {")
	assert.NotContains(t, html, "export default")
	assert.NotContains(t, html, "&lt;Callout&gt;")
	assert.Contains(t, html, "Title")
	assert.Contains(t, html, "and inline residue")
}

func TestRenderEmailEscapesRawHTML(t *testing.T) {
	r := NewRenderer()

	html, _ := r.RenderEmail("A <div onclick=\"alert(1)\">plain</div> div.")

	// Embedded markup is shown as text, never emitted live.
	assert.NotContains(t, html, `<div onclick`)
	assert.Contains(t, html, "&lt;div onclick=&quot;alert(1)&quot;&gt;")
}

func TestRenderEmailOrderedListStart(t *testing.T) {
	r := NewRenderer()

	html, _ := r.RenderEmail("5. five\n6. six\n")

	assert.Contains(t, html, `<ol start="5"`)
}

func TestRenderEmailImageAltText(t *testing.T) {
	r := NewRenderer()

	html, _ := r.RenderEmail("![a chart](https://example.com/chart.png)")

	assert.Contains(t, html, `<img src="https://example.com/chart.png" alt="a chart" style="`+styleImage+`">`)
}
