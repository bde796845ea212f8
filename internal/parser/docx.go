package parser

import (
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/candgest/internal/document"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Each paragraph becomes a line and
// every table cell paragraph is read in document order.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "candgest-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	out := &document.Document{
		Title: trimExt(filename, ".docx"),
	}
	page := document.Page{Number: 1}

	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			page.AddLine(docxParagraphText(v))
		case *docx.Table:
			for _, row := range v.TableRows {
				for _, cell := range row.TableCells {
					for _, para := range cell.Paragraphs {
						page.AddLine(docxParagraphText(para))
					}
				}
			}
		}
	}

	if len(page.Lines) > 0 {
		out.Pages = append(out.Pages, page)
	}
	return out, nil
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf []byte
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf = append(buf, t.Text...)
			}
		}
	}
	return string(buf)
}
