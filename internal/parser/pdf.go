package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/dgallion1/candgest/internal/document"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It reads text rows with the Go library,
// falls back to pdftotext if that fails, and can OCR pages that carry
// no embedded text.
type PDFParser struct {
	FallbackPdftotext bool
	OCR               bool
	OCRLanguage       string
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "candgest-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	pages, err := extractPDFPages(tmpPath)
	if err != nil && p.FallbackPdftotext {
		pages, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	if p.OCR {
		if err := p.ocrEmptyPages(tmpPath, pages); err != nil {
			return nil, err
		}
	}

	doc := &document.Document{
		Title: trimExt(filename, ".pdf", ".PDF"),
	}
	for i, text := range pages {
		doc.AddPage(i+1, text)
	}
	return doc, nil
}

// ocrEmptyPages replaces the text of pages that have no embedded text
// but do carry images with tesseract output.
func (p *PDFParser) ocrEmptyPages(path string, pages []string) error {
	var empty []int
	for i, text := range pages {
		if strings.TrimSpace(text) == "" {
			empty = append(empty, i+1)
		}
	}
	if len(empty) == 0 {
		return nil
	}

	withImages, err := imagePages(path)
	if err != nil {
		// Without page structure there is no way to tell scans from blank pages.
		return nil
	}

	lang := p.OCRLanguage
	if lang == "" {
		lang = "por"
	}
	for _, pageNr := range empty {
		if !withImages[pageNr] {
			continue
		}
		text, err := ocrPage(path, pageNr, lang)
		if err != nil {
			return fmt.Errorf("ocr page %d: %w", pageNr, err)
		}
		pages[pageNr-1] = text
	}
	return nil
}

func extractPDFPages(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		pages[i-1] = joinRows(rows)
	}
	return pages, nil
}

// joinRows renders text rows top to bottom, inserting a space where the
// horizontal gap between two runs is wider than a fraction of the font.
func joinRows(rows pdflib.Rows) string {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Position > rows[j].Position
	})

	var sb strings.Builder
	for _, row := range rows {
		texts := row.Content
		sort.SliceStable(texts, func(i, j int) bool { return texts[i].X < texts[j].X })

		var line strings.Builder
		prevEnd := 0.0
		for i, t := range texts {
			if i > 0 && t.X-prevEnd > t.FontSize*0.2 && !strings.HasSuffix(line.String(), " ") {
				line.WriteByte(' ')
			}
			line.WriteString(t.S)
			prevEnd = t.X + t.W
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line.String())
	}
	return sb.String()
}

func extractPdftotext(path string) ([]string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	pages := splitPages(string(out))
	// pdftotext terminates the last page with a form feed.
	if n := len(pages); n > 0 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages, nil
}

func ocrPage(path string, pageNr int, lang string) (string, error) {
	dir, err := os.MkdirTemp("", "candgest-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := dir + "/page"
	nr := fmt.Sprintf("%d", pageNr)
	render := exec.Command("pdftoppm", "-f", nr, "-l", nr, "-r", "300", "-png", "-singlefile", path, prefix)
	if out, err := render.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(out)))
	}

	recognize := exec.Command("tesseract", prefix+".png", "stdout", "-l", lang)
	out, err := recognize.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}

func splitPages(text string) []string {
	return strings.Split(text, "\f")
}
