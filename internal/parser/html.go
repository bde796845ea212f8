package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/candgest/internal/document"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML exports. Every block-level element with text
// becomes one line; <br> splits a block into several lines.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &document.Document{
		Title: trimExt(filename, ".html", ".htm"),
	}

	// Extract title from <title> tag if present.
	if title := findTitle(root); title != "" {
		doc.Title = title
	}

	page := document.Page{Number: 1}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head", "nav", "footer":
				return
			case "p", "li", "td", "th", "h1", "h2", "h3", "h4", "h5", "h6", "dt", "dd", "blockquote", "pre":
				if !hasBlockChild(n) {
					for _, ln := range strings.Split(textContent(n), "\n") {
						page.AddLine(collapseSpaces(ln))
					}
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	body := findBody(root)
	if body != nil {
		walk(body)
	} else {
		walk(root)
	}

	if len(page.Lines) > 0 {
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "p", "li", "ul", "ol", "table", "div", "h1", "h2", "h3", "h4", "h5", "h6":
			return true
		}
	}
	return false
}

// textContent flattens a subtree, turning <br> into newlines.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
