// Package output writes candidate records as the semicolon-separated
// table consumed downstream.
package output

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dgallion1/candgest/internal/extraction"
)

const bom = "\ufeff"

// Encode writes a UTF-8 BOM, the header row and one row per record.
// Rows use ';' as delimiter and CRLF line endings.
func Encode(w io.Writer, records []extraction.Record) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	cw.UseCRLF = true

	if err := cw.Write(extraction.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("write record %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// WriteFile encodes records to path, creating missing parent directories
// and replacing any existing file.
func WriteFile(path string, records []extraction.Record) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := Encode(bw, records); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}
