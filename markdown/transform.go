package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// componentCleaner prunes authoring residue from the parsed tree before
// rendering: JSX-style component tags and module import/export statements
// mean nothing to an email client. Working on the tree instead of the raw
// text keeps surrounding markdown intact, including the content wrapped by
// a component.
type componentCleaner struct{}

var componentTagRe = regexp.MustCompile(`^</?[A-Z][A-Za-z0-9]*(\s[^>]*)?/?>$`)

func (c *componentCleaner) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	var doomed []ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.HTMLBlock:
			if isComponentMarkup(htmlBlockText(v, source)) {
				doomed = append(doomed, n)
				return ast.WalkSkipChildren, nil
			}
		case *ast.RawHTML:
			if isComponentMarkup(rawHTMLText(v, source)) {
				doomed = append(doomed, n)
				return ast.WalkSkipChildren, nil
			}
		case *ast.Paragraph:
			if isModuleStatement(linesText(v, source)) {
				doomed = append(doomed, n)
				return ast.WalkSkipChildren, nil
			}
		}
		return ast.WalkContinue, nil
	})

	for _, n := range doomed {
		if parent := n.Parent(); parent != nil {
			parent.RemoveChild(parent, n)
		}
	}
}

// isComponentMarkup reports whether the markup is a component tag: an
// opening, closing or self-closing tag whose name starts with an uppercase
// letter, the JSX convention.
func isComponentMarkup(markup string) bool {
	markup = strings.TrimSpace(markup)
	if !strings.HasPrefix(markup, "<") {
		return false
	}
	// A block may hold the whole element, e.g. <Note>...</Note> on one line.
	if i := strings.IndexByte(markup, '>'); i >= 0 && i < len(markup)-1 {
		markup = markup[:i+1]
	}
	return componentTagRe.MatchString(markup)
}

// isModuleStatement reports whether every line of the paragraph is a module
// import or export statement.
func isModuleStatement(content string) bool {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) == 0 {
		return false
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "import ") && !strings.HasPrefix(line, "export ") {
			return false
		}
	}
	return true
}

func linesText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

func htmlBlockText(n *ast.HTMLBlock, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	if n.HasClosure() {
		buf.Write(n.ClosureLine.Value(source))
	}
	return buf.String()
}

func rawHTMLText(n *ast.RawHTML, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < n.Segments.Len(); i++ {
		segment := n.Segments.At(i)
		buf.Write(segment.Value(source))
	}
	return buf.String()
}
