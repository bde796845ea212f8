package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/candgest/internal/document"
	"github.com/dgallion1/candgest/internal/extraction"
	"github.com/dgallion1/candgest/internal/output"
)

// Processor is the single-document entry point: render, extract, write.
type Processor struct {
	source    document.Source
	extractor *extraction.Extractor
	log       *slog.Logger
}

func NewProcessor(source document.Source, extractor *extraction.Extractor, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Processor{source: source, extractor: extractor, log: log}
}

// Report describes a finished document run.
type Report struct {
	OutputPath string
	Title      string
	Records    []extraction.Record
	Stats      extraction.Stats
}

// Process renders docPath, extracts its candidate records and writes them
// to outPath, returning outPath. A render failure produces no output file.
func (p *Processor) Process(ctx context.Context, docPath, unitCode, outPath string) (string, error) {
	rep, err := p.Run(ctx, docPath, unitCode, outPath)
	if err != nil {
		return "", err
	}
	return rep.OutputPath, nil
}

// Run is Process returning the full report.
func (p *Processor) Run(ctx context.Context, docPath, unitCode, outPath string) (*Report, error) {
	doc, err := p.source.Render(ctx, docPath)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", docPath, err)
	}
	return p.Emit(ctx, doc, unitCode, outPath)
}

// Emit extracts records from an already rendered document and writes them.
func (p *Processor) Emit(ctx context.Context, doc *document.Document, unitCode, outPath string) (*Report, error) {
	log := p.log.With("unit_code", unitCode, "output", outPath)

	res, err := p.extractor.Extract(ctx, unitCode, doc)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	if err := output.WriteFile(outPath, res.Records); err != nil {
		return nil, err
	}

	log.Info("document processed",
		"pages", res.Stats.Pages,
		"lines", res.Stats.Lines,
		"records", res.Stats.Records,
		"dropped", res.Stats.Dropped,
	)
	return &Report{
		OutputPath: outPath,
		Title:      doc.Title,
		Records:    res.Records,
		Stats:      res.Stats,
	}, nil
}
