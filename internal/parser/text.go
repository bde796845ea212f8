package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/candgest/internal/document"
)

// TextParser handles plain text files. A form feed starts a new page.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &document.Document{
		Title: trimExt(filename, ".txt"),
	}

	page := document.Page{Number: 1}
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.Split(line, "\f")
		for i, part := range parts {
			if i > 0 {
				doc.Pages = append(doc.Pages, page)
				page = document.Page{Number: page.Number + 1}
			}
			page.AddLine(part)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(page.Lines) > 0 || len(doc.Pages) > 0 {
		doc.Pages = append(doc.Pages, page)
	}

	return doc, nil
}
