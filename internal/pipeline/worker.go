package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/candgest/internal/parser"
	"github.com/dgallion1/candgest/internal/store"
)

// Worker processes a single uploaded document job.
type Worker struct {
	processor  *Processor
	runs       *store.Store
	parserOpts parser.Options
	dataDir    string
	log        *slog.Logger
}

func NewWorker(processor *Processor, runs *store.Store, parserOpts parser.Options, dataDir string, log *slog.Logger) *Worker {
	return &Worker{
		processor:  processor,
		runs:       runs,
		parserOpts: parserOpts,
		dataDir:    dataDir,
		log:        log,
	}
}

// Process runs render, dedup, extraction, output and persistence for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "unit_code", job.UnitCode, "filename", job.Filename)

	// Phase 1: Render
	job.SetStatus(StatusRendering, "rendering")
	p, err := parser.ForFile(job.Filename, w.parserOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "rendering")
		return
	}

	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	job.releaseFileData()
	if err != nil {
		log.Error("render failed", "error", err)
		job.AddError(fmt.Sprintf("render: %s", err))
		job.SetStatus(StatusFailed, "rendering")
		return
	}

	// Hash the rendered lines so re-encoded copies of the same edital dedup.
	hash := ContentHashHex([]byte(doc.Text()))
	job.SetRendered(len(doc.Pages), doc.LineCount(), hash)

	// Phase 1.5: Dedup check
	if !job.Force {
		prev, exists, err := w.runs.FindByHash(ctx, job.UnitCode, hash)
		if err != nil {
			log.Warn("dedup check failed, proceeding", "error", err)
		} else if exists {
			log.Info("duplicate document, skipping", "existing_run_id", prev.ID)
			job.SetResult(prev.ID, prev.OutputPath)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		}
	}

	// Phase 2: Extract and write
	job.SetStatus(StatusExtracting, "extracting")
	runID := job.ID
	outPath := filepath.Join(w.dataDir, outputName(job.UnitCode, job.Filename, runID))
	rep, err := w.processor.Emit(ctx, doc, job.UnitCode, outPath)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	job.SetExtracted(rep.Stats)

	// Phase 3: Persist run history
	job.SetStatus(StatusWriting, "writing")
	run := store.Run{
		ID:          runID,
		UnitCode:    job.UnitCode,
		Filename:    job.Filename,
		ContentHash: hash,
		OutputPath:  outPath,
		Pages:       rep.Stats.Pages,
		Lines:       rep.Stats.Lines,
		Dropped:     rep.Stats.Dropped,
	}
	if err := w.runs.SaveRun(ctx, run, rep.Records); err != nil {
		log.Error("save run failed", "error", err)
		job.AddError(fmt.Sprintf("save run: %s", err))
		job.SetStatus(StatusFailed, "writing")
		return
	}

	job.SetResult(runID, outPath)
	job.SetStatus(StatusCompleted, "done")
	log.Info("job complete", "run_id", runID, "records", rep.Stats.Records)
}

// outputName builds "<unit>_<slug>_<id8>.csv".
func outputName(unitCode, filename, runID string) string {
	name := filepath.Base(filename)
	base := Slugify(strings.TrimSuffix(name, filepath.Ext(name)))
	if base == "" {
		base = "document"
	}
	id := runID
	if len(id) > 8 {
		id = id[:8]
	}
	unit := Slugify(unitCode)
	if unit == "" {
		unit = "unit"
	}
	return fmt.Sprintf("%s_%s_%s.csv", unit, base, id)
}
