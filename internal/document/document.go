package document

import (
	"context"
	"strings"
)

// Document is the ordered page/line rendering of a source file.
type Document struct {
	Title string // Document title (from metadata or filename)
	Pages []Page // Pages in reading order
}

// Page is an ordered sequence of non-empty, trimmed lines.
type Page struct {
	Number int      // 1-based source page (0 if N/A)
	Lines  []string // Lines in reading order
}

// Source renders a file on disk into pages of lines.
type Source interface {
	Render(ctx context.Context, path string) (*Document, error)
}

// AddLine appends a trimmed line, skipping blank input.
func (p *Page) AddLine(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	p.Lines = append(p.Lines, s)
}

// AddPage appends a page built from raw text, one line per newline.
// Pages that end up empty are still recorded so page numbers stay aligned.
func (d *Document) AddPage(number int, text string) *Page {
	pg := Page{Number: number}
	for _, ln := range strings.Split(text, "\n") {
		pg.AddLine(strings.TrimRight(ln, "\r"))
	}
	d.Pages = append(d.Pages, pg)
	return &d.Pages[len(d.Pages)-1]
}

// LineCount returns the total number of lines across all pages.
func (d *Document) LineCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Lines)
	}
	return n
}

// Text joins every line of the document with newlines. Pages are
// separated by a form feed.
func (d *Document) Text() string {
	var sb strings.Builder
	for i, p := range d.Pages {
		if i > 0 {
			sb.WriteString("\f")
		}
		sb.WriteString(strings.Join(p.Lines, "\n"))
	}
	return sb.String()
}
