// Package markdown converts post content into HTML that renders acceptably
// across email clients. Email clients strip <head> contents and largely
// ignore <style> blocks, so every element carries its presentation inline.
package markdown

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Inline styles for every element the renderer can emit.
const (
	styleParagraph  = "font-family:system-ui,-apple-system,'Segoe UI',Roboto,Helvetica,Arial,sans-serif; font-size:14px; line-height:20px; color:#1F2A33; margin:0 0 10px 0;"
	styleLink       = "color:#094881; text-decoration:underline;"
	styleList       = "font-family:system-ui,-apple-system,'Segoe UI',Roboto,Helvetica,Arial,sans-serif; font-size:14px; line-height:20px; color:#1F2A33; margin:0 0 10px 0; padding-left:20px;"
	styleListItem   = "margin:4px 0;"
	stylePre        = "font-family:'Courier New',Courier,monospace; font-size:12px; line-height:18px; background-color:#E7E9E3; border:1px solid #C6CBC8; border-radius:4px; padding:12px; margin:12px 0; overflow-x:auto;"
	styleCode       = "font-family:'Courier New',Courier,monospace; font-size:12px; background-color:#E7E9E3; padding:2px 4px; border-radius:2px;"
	styleBlockquote = "border-left:5px solid #B7BDC0; padding:10px 16px; margin:12px 0; font-family:Georgia,'Times New Roman',serif; font-size:16px; line-height:22px; color:#1F2A33; background-color:#E7E9E3;"
	styleHr         = "border-top:1px solid #C6CBC8; margin:16px 0; border-bottom:none; border-left:none; border-right:none;"
	styleImage      = "max-width:100%; height:auto; display:block; border:0; outline:none; text-decoration:none;"
	styleStrong     = "font-weight:700;"
	styleEm         = "font-style:italic;"
)

var headingStyles = [5]string{
	"", // unused, headings start at 1
	"font-family:Georgia,'Times New Roman',serif; font-weight:700; font-size:28px; line-height:34px; color:#1F2A33; margin:16px 0 10px 0;",
	"font-family:Georgia,'Times New Roman',serif; font-weight:700; font-size:22px; line-height:28px; color:#1F2A33; margin:14px 0 10px 0;",
	"font-family:Georgia,'Times New Roman',serif; font-weight:700; font-size:18px; line-height:24px; color:#1F2A33; margin:12px 0 8px 0;",
	"font-family:Georgia,'Times New Roman',serif; font-weight:700; font-size:14px; line-height:20px; color:#1F2A33; margin:10px 0 6px 0;",
}

// Renderer converts markdown, possibly containing component residue, into
// email-safe HTML.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer returns a renderer wired with the component cleanup transform
// and the inline-style node renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithParserOptions(
				parser.WithASTTransformers(util.Prioritized(&componentCleaner{}, 100)),
			),
			goldmark.WithRendererOptions(
				renderer.WithNodeRenderers(util.Prioritized(&emailNodeRenderer{}, 100)),
			),
		),
	}
}

// RenderEmail converts raw content into inline-styled HTML plus a plain
// text fallback. It never fails: when conversion is impossible the whole
// content comes back as a single escaped paragraph.
func (r *Renderer) RenderEmail(content string) (htmlBody, textBody string) {
	defer func() {
		if recover() != nil {
			htmlBody = fallbackParagraph(content)
			textBody = PlainText(htmlBody)
		}
	}()

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		htmlBody = fallbackParagraph(content)
		return htmlBody, PlainText(htmlBody)
	}

	htmlBody = buf.String()
	return htmlBody, PlainText(htmlBody)
}

func fallbackParagraph(content string) string {
	return `<p style="` + styleParagraph + `">` + html.EscapeString(content) + `</p>`
}

// emailNodeRenderer walks the parsed tree and emits inline-styled markup.
// Raw HTML that survives the cleanup transform is escaped and shown as
// text; nothing from the source is ever emitted as live markup.
type emailNodeRenderer struct{}

func (r *emailNodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindDocument, r.renderNoop)
	reg.Register(ast.KindTextBlock, r.renderNoop)
	reg.Register(ast.KindHeading, r.renderHeading)
	reg.Register(ast.KindParagraph, r.renderParagraph)
	reg.Register(ast.KindList, r.renderList)
	reg.Register(ast.KindListItem, r.renderListItem)
	reg.Register(ast.KindFencedCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindBlockquote, r.renderBlockquote)
	reg.Register(ast.KindThematicBreak, r.renderThematicBreak)
	reg.Register(ast.KindHTMLBlock, r.renderHTMLBlock)
	reg.Register(ast.KindText, r.renderText)
	reg.Register(ast.KindString, r.renderString)
	reg.Register(ast.KindCodeSpan, r.renderCodeSpan)
	reg.Register(ast.KindEmphasis, r.renderEmphasis)
	reg.Register(ast.KindLink, r.renderLink)
	reg.Register(ast.KindAutoLink, r.renderAutoLink)
	reg.Register(ast.KindImage, r.renderImage)
	reg.Register(ast.KindRawHTML, r.renderRawHTML)
}

func (r *emailNodeRenderer) renderNoop(_ util.BufWriter, _ []byte, _ ast.Node, _ bool) (ast.WalkStatus, error) {
	return ast.WalkContinue, nil
}

func (r *emailNodeRenderer) renderHeading(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	style := n.Level
	if style > 4 {
		style = 4
	}
	if entering {
		fmt.Fprintf(w, `<h%d style="%s">`, n.Level, headingStyles[style])
	} else {
		fmt.Fprintf(w, "</h%d>\n", n.Level)
	}
	return ast.WalkContinue, nil
}

func (r *emailNodeRenderer) renderParagraph(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<p style="` + styleParagraph + `">`)
	} else {
		_, _ = w.WriteString("</p>\n")
	}
	return ast.WalkContinue, nil
}

func (r *emailNodeRenderer) renderList(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.List)
	tag := "ul"
	if n.IsOrdered() {
		tag = "ol"
	}
	if entering {
		if n.IsOrdered() && n.Start != 1 {
			fmt.Fprintf(w, `<%s start="%d" style="%s">`, tag, n.Start, styleList)
		} else {
			fmt.Fprintf(w, `<%s style="%s">`, tag, styleList)
		}
		_, _ = w.WriteString("\n")
	} else {
		fmt.Fprintf(w, "</%s>\n", tag)
	}
	return ast.WalkContinue, nil
}

func (r *emailNodeRenderer) renderListItem(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<li style="` + styleListItem + `">`)
	} else {
		_, _ = w.WriteString("</li>\n")
	}
	return ast.WalkContinue, nil
}

func (r *emailNodeRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<pre style="` + stylePre + `"><code style="` + styleCode + `">`)
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			_, _ = w.Write(util.EscapeHTML(line.Value(source)))
		}
	} else {
		_, _ = w.WriteString("</code></pre>\n")
	}
	return ast.WalkContinue, nil
}

func (r *emailNodeRenderer) renderBlockquote(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<blockquote style="` + styleBlockquote + `">` + "\n")
	} else {
		_, _ = w.WriteString("</blockquote>\n")
	}
	return ast.WalkContinue, nil
}

func (r *emailNodeRenderer) renderThematicBreak(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<hr style="` + styleHr + `">` + "\n")
	}
	return ast.WalkContinue, nil
}

// renderHTMLBlock escapes the block and shows it as literal text inside a
// paragraph; unrecognized embedded markup has no email-client meaning.
func (r *emailNodeRenderer) renderHTMLBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.HTMLBlock)
	_, _ = w.WriteString(`<p style="` + styleParagraph + `">`)
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
	if n.HasClosure() {
		_, _ = w.Write(util.EscapeHTML(n.ClosureLine.Value(source)))
	}
	_, _ = w.WriteString("</p>\n")
	return ast.WalkContinue, nil
}

func (r *emailNodeRenderer) renderText(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Text)
	_, _ = w.Write(util.EscapeHTML(n.Segment.Value(source)))
	if n.HardLineBreak() {
		_, _ = w.WriteString("<br>\n")
	} else if n.SoftLineBreak() {
		_, _ = w.WriteString("\n")
	}
	return ast.WalkContinue, nil
}

func (r *emailNodeRenderer) renderString(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.String)
	_, _ = w.Write(util.EscapeHTML(n.Value))
	return ast.WalkContinue, nil
}

func (r *emailNodeRenderer) renderCodeSpan(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</code>")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<code style="` + styleCode + `">`)
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		segment := c.(*ast.Text).Segment
		value := segment.Value(source)
		if bytes.HasSuffix(value, []byte("\n")) {
			_, _ = w.Write(util.EscapeHTML(value[:len(value)-1]))
			_, _ = w.WriteString(" ")
		} else {
			_, _ = w.Write(util.EscapeHTML(value))
		}
	}
	return ast.WalkSkipChildren, nil
}

func (r *emailNodeRenderer) renderEmphasis(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Emphasis)
	tag, style := "em", styleEm
	if n.Level == 2 {
		tag, style = "strong", styleStrong
	}
	if entering {
		fmt.Fprintf(w, `<%s style="%s">`, tag, style)
	} else {
		fmt.Fprintf(w, "</%s>", tag)
	}
	return ast.WalkContinue, nil
}

func (r *emailNodeRenderer) renderLink(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Link)
	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	_, _ = w.WriteString(`" style="` + styleLink + `">`)
	return ast.WalkContinue, nil
}

func (r *emailNodeRenderer) renderAutoLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.AutoLink)
	url := n.URL(source)
	label := util.EscapeHTML(n.Label(source))
	_, _ = w.WriteString(`<a href="`)
	if n.AutoLinkType == ast.AutoLinkEmail && !bytes.HasPrefix(url, []byte("mailto:")) {
		_, _ = w.WriteString("mailto:")
	}
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(url, false)))
	_, _ = w.WriteString(`" style="` + styleLink + `">`)
	_, _ = w.Write(label)
	_, _ = w.WriteString("</a>")
	return ast.WalkContinue, nil
}

func (r *emailNodeRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	_, _ = w.WriteString(`<img src="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(util.EscapeHTML([]byte(textOf(node, source))))
	_, _ = w.WriteString(`" style="` + styleImage + `">`)
	return ast.WalkSkipChildren, nil
}

// renderRawHTML escapes leftover inline markup as visible text.
func (r *emailNodeRenderer) renderRawHTML(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	n := node.(*ast.RawHTML)
	for i := 0; i < n.Segments.Len(); i++ {
		segment := n.Segments.At(i)
		_, _ = w.Write(util.EscapeHTML(segment.Value(source)))
	}
	return ast.WalkSkipChildren, nil
}

// textOf collects the plain text of a node's subtree.
func textOf(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

var _ renderer.NodeRenderer = (*emailNodeRenderer)(nil)
