// Package extraction turns the lines of an electoral-list document into
// candidate records. Each line is classified, then offered to an ordered
// chain of rules (classifier-driven first, textual fallbacks second) that
// track the body, section and list context of the scan.
package extraction

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/dgallion1/candgest/internal/classify"
	"github.com/dgallion1/candgest/internal/document"
)

// DefaultThreshold is the confidence a classifier verdict must reach to be
// trusted over the textual fallbacks.
const DefaultThreshold = 0.55

type Options struct {
	Classifier classify.Classifier
	Names      classify.NameExtractor
	// Threshold gates every classifier-driven rule. Zero means DefaultThreshold.
	Threshold float64
	// PartyHints are regexp fragments recognized by the list-header fallback.
	// Empty means DefaultPartyHints.
	PartyHints []string
	Logger     *slog.Logger
}

// Stats summarizes one extraction run.
type Stats struct {
	Pages            int            `json:"pages"`
	Lines            int            `json:"lines"`
	ClassifierCalls  int            `json:"classifier_calls"`
	ClassifierErrors int            `json:"classifier_errors"`
	NameErrors       int            `json:"name_errors"`
	NameFallbacks    int            `json:"name_fallbacks"`
	Records          int            `json:"records"`
	Dropped          int            `json:"dropped"`
	ByRule           map[string]int `json:"by_rule"`
}

// Result is the output of Extract: records in discovery order plus stats.
type Result struct {
	Records []Record
	Stats   Stats
}

// Extractor is safe for concurrent use; every Extract call owns its own state.
type Extractor struct {
	classifier classify.Classifier
	names      classify.NameExtractor
	threshold  float64
	partyHints *regexp.Regexp
	log        *slog.Logger
}

func New(opts Options) (*Extractor, error) {
	hints, err := compilePartyHints(opts.PartyHints)
	if err != nil {
		return nil, err
	}
	e := &Extractor{
		classifier: opts.Classifier,
		names:      opts.Names,
		threshold:  opts.Threshold,
		partyHints: hints,
		log:        opts.Logger,
	}
	if e.classifier == nil {
		e.classifier = classify.Nop{}
	}
	if e.names == nil {
		e.names = classify.Nop{}
	}
	if e.threshold <= 0 {
		e.threshold = DefaultThreshold
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	return e, nil
}

// Threshold returns the effective confidence threshold.
func (e *Extractor) Threshold() float64 {
	return e.threshold
}

// scan is the per-document working set threaded through the rules.
type scan struct {
	*Extractor
	unitCode string
	state    State
	records  []Record
	stats    Stats
	log      *slog.Logger
}

// Extract scans doc page by page, line by line. Collaborator failures on a
// single line never abort the scan; the line falls through to the textual
// fallbacks instead. The only error returned is ctx's.
func (e *Extractor) Extract(ctx context.Context, unitCode string, doc *document.Document) (*Result, error) {
	sc := &scan{
		Extractor: e,
		unitCode:  unitCode,
		stats:     Stats{ByRule: make(map[string]int)},
		log:       e.log.With("unit_code", unitCode),
	}

	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sc.stats.Pages++
		sc.scanPage(ctx, page)
	}

	if sc.stats.ClassifierErrors > 0 {
		sc.log.Warn("classifier failures degraded to fallbacks",
			"errors", sc.stats.ClassifierErrors,
			"calls", sc.stats.ClassifierCalls,
		)
	}
	sc.stats.Records = len(sc.records)
	return &Result{Records: sc.records, Stats: sc.stats}, nil
}

func (sc *scan) scanPage(ctx context.Context, page document.Page) {
	lines := make([]string, 0, len(page.Lines))
	for _, raw := range page.Lines {
		if s := Normalize(raw); s != "" {
			lines = append(lines, s)
		}
	}

	latchAt := -1
	if sc.state.Body == BodyPrimary {
		latchAt = markerLine(lines)
	}

	for i, text := range lines {
		if i == latchAt && sc.state.latchSecondary() {
			sc.log.Debug("secondary body marker", "page", page.Number, "line", text)
		}
		sc.stats.Lines++
		sc.dispatch(ctx, line{text: text, label: sc.classify(ctx, text)})
	}
}

func (sc *scan) classify(ctx context.Context, text string) classify.Label {
	sc.stats.ClassifierCalls++
	res, err := sc.classifier.Classify(ctx, text)
	if err != nil {
		sc.stats.ClassifierErrors++
		sc.log.Debug("classifier failed", "line", text, "error", err)
		return classify.LabelOther
	}
	return res.Gate(sc.threshold)
}

func (sc *scan) dispatch(ctx context.Context, ln line) {
	for _, r := range rules {
		if r.apply(ctx, sc, ln) {
			sc.stats.ByRule[r.name]++
			sc.log.Debug("line accepted", "rule", r.name, "label", ln.label, "line", ln.text)
			return
		}
	}
	sc.stats.Dropped++
	sc.log.Debug("line dropped", "label", ln.label, "line", ln.text)
}

func (sc *scan) enterList(header string) {
	sigla, via := resolveSigla(header)
	sc.state.enterList(header, sigla)
	sc.log.Debug("list header", "sigla", sigla, "sigla_rule", via, "line", header)
}

// candidateName asks the name extractor first, then falls back to the text
// after the ordinal, then to the whole line.
func (sc *scan) candidateName(ctx context.Context, text string) string {
	name, err := sc.names.ExtractName(ctx, text)
	if err != nil {
		sc.stats.NameErrors++
		sc.log.Debug("name extractor failed", "line", text, "error", err)
	}
	if err == nil && name != "" {
		return name
	}
	sc.stats.NameFallbacks++
	if rest, ok := ordinalRemainder(text); ok {
		return rest
	}
	return text
}

func (sc *scan) emit(name string) {
	order := sc.state.nextOrder()
	sc.records = append(sc.records, newRecord(sc.unitCode, &sc.state, order, name))
}
