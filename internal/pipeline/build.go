package pipeline

import (
	"log/slog"

	"github.com/dgallion1/candgest/internal/classify"
	"github.com/dgallion1/candgest/internal/config"
	"github.com/dgallion1/candgest/internal/extraction"
	"github.com/dgallion1/candgest/internal/parser"
)

// ParserOptions maps configuration onto line-source options.
func ParserOptions(cfg config.Config) parser.Options {
	return parser.Options{
		FallbackPdftotext: cfg.PDFFallbackPdftotext,
		OCR:               cfg.OCREnabled,
		OCRLanguage:       cfg.OCRLanguage,
	}
}

// Build wires a Processor from configuration. The returned model client is
// nil when no model server is configured; extraction then relies on
// textual heuristics alone.
func Build(cfg config.Config, log *slog.Logger) (*Processor, *classify.Client, error) {
	opts := extraction.Options{
		Threshold:  cfg.Threshold,
		PartyHints: cfg.PartyHints,
		Logger:     log,
	}
	var model *classify.Client
	if cfg.ModelURL != "" {
		model = classify.NewClient(cfg.ModelURL, cfg.ModelName, cfg.ModelTimeout)
		opts.Classifier = model
		opts.Names = model
	}

	ex, err := extraction.New(opts)
	if err != nil {
		return nil, nil, err
	}
	src := &parser.FileSource{Options: ParserOptions(cfg)}
	return NewProcessor(src, ex, log), model, nil
}
