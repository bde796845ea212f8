package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/candgest/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Headings, list
// items and paragraph lines each become a line; a thematic break (---)
// starts a new page.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	root := md.Parser().Parse(reader)

	doc := &document.Document{
		Title: trimExt(filename, ".md", ".markdown"),
	}
	page := document.Page{Number: 1}

	flushPage := func() {
		if len(page.Lines) > 0 {
			doc.Pages = append(doc.Pages, page)
		}
		page = document.Page{Number: page.Number + 1}
	}

	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.ThematicBreak:
				flushPage()
			case *ast.List, *ast.ListItem, *ast.Blockquote:
				walk(node)
			default:
				for _, ln := range strings.Split(extractText(c, src), "\n") {
					page.AddLine(ln)
				}
			}
		}
	}
	walk(root)
	flushPage()

	return doc, nil
}

// extractText gets the text content of a goldmark AST node, keeping
// source line breaks.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
