package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/candgest/internal/document"
)

// Parser converts raw document bytes into pages of lines.
type Parser interface {
	Parse(r io.Reader, filename string) (*document.Document, error)
}

// Options tunes the PDF line source.
type Options struct {
	FallbackPdftotext bool
	OCR               bool
	OCRLanguage       string
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{
			FallbackPdftotext: opts.FallbackPdftotext,
			OCR:               opts.OCR,
			OCRLanguage:       opts.OCRLanguage,
		}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// FileSource renders files on disk, picking a parser by extension.
type FileSource struct {
	Options Options
}

// Render opens path and parses it into pages of lines.
func (s *FileSource) Render(ctx context.Context, path string) (*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := ForFile(path, s.Options)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", path, err)
	}
	return doc, nil
}

func trimExt(filename string, exts ...string) string {
	for _, ext := range exts {
		filename = strings.TrimSuffix(filename, ext)
	}
	return filename
}
