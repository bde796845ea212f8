package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/candgest/internal/document"
)

// CSVParser handles spreadsheet exports of electoral lists. Each row
// becomes one line with its non-empty cells joined by a space.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	// Exports from spreadsheet tools in Portugal default to ';'.
	records, err := readCSV(reader)
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &document.Document{
		Title: trimExt(filename, ".csv"),
	}
	if len(records) == 0 {
		return doc, nil
	}

	page := document.Page{Number: 1}
	for _, row := range records {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell != "" {
				cells = append(cells, cell)
			}
		}
		page.AddLine(strings.Join(cells, " "))
	}
	doc.Pages = append(doc.Pages, page)

	return doc, nil
}

func readCSV(reader *csv.Reader) ([][]string, error) {
	first, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rest, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	records := append([][]string{first}, rest...)

	// A single-column first row containing ';' means the wrong delimiter.
	if len(first) == 1 && strings.Contains(first[0], ";") {
		for i, row := range records {
			var split []string
			for _, cell := range row {
				split = append(split, strings.Split(cell, ";")...)
			}
			records[i] = split
		}
	}
	return records, nil
}
