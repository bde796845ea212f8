package extraction

import (
	"context"
	"strings"

	"github.com/dgallion1/candgest/internal/classify"
)

// line is one normalized line with its gated classifier verdict.
type line struct {
	text  string
	label classify.Label
}

// rule inspects a line and, when it accepts it, mutates the scan and
// returns true. Rules run in a fixed order; the first to accept consumes
// the line.
type rule struct {
	name  string
	apply func(ctx context.Context, sc *scan, ln line) bool
}

var rules = []rule{
	{"body-heading", bodyHeadingRule},
	{"classifier-section", classifierSectionRule},
	{"classifier-header", classifierHeaderRule},
	{"classifier-candidate", classifierCandidateRule},
	{"fallback-section", fallbackSectionRule},
	{"fallback-header", fallbackHeaderRule},
	{"fallback-candidate", fallbackCandidateRule},
}

// bodyHeadingRule swallows "2. Câmara Municipal"-style headings so their
// numbering is not read as a candidate ordinal. A trusted header or
// candidate verdict wins over the heading shape.
func bodyHeadingRule(_ context.Context, _ *scan, ln line) bool {
	if ln.label == classify.LabelListHeader || ln.label == classify.LabelCandidate {
		return false
	}
	return bodyHeading.MatchString(ln.text)
}

func classifierSectionRule(_ context.Context, sc *scan, ln line) bool {
	if ln.label != classify.LabelSectionMarker {
		return false
	}
	sec, ok := matchSection(ln.text)
	if !ok {
		return false
	}
	sc.state.enterSection(sec)
	return true
}

func classifierHeaderRule(_ context.Context, sc *scan, ln line) bool {
	if ln.label != classify.LabelListHeader {
		return false
	}
	sc.enterList(ln.text)
	return true
}

func classifierCandidateRule(ctx context.Context, sc *scan, ln line) bool {
	if ln.label != classify.LabelCandidate || sc.state.Sigla == "" {
		return false
	}
	sc.emit(sc.candidateName(ctx, ln.text))
	return true
}

func fallbackSectionRule(_ context.Context, sc *scan, ln line) bool {
	sec, ok := matchSection(ln.text)
	if !ok {
		return false
	}
	sc.state.enterSection(sec)
	return true
}

func fallbackHeaderRule(_ context.Context, sc *scan, ln line) bool {
	if !strings.Contains(ln.text, "-") || !sc.partyHints.MatchString(ln.text) {
		return false
	}
	// "3 - Ana Lista" is a candidate of the open list; "1 - PS - Partido"
	// still opens a new one.
	if rest, ok := ordinalRemainder(ln.text); ok && sc.state.Sigla != "" && !strings.Contains(rest, "-") {
		return false
	}
	sc.enterList(ln.text)
	return true
}

func fallbackCandidateRule(_ context.Context, sc *scan, ln line) bool {
	if sc.state.Sigla == "" {
		return false
	}
	name, ok := ordinalRemainder(ln.text)
	if !ok {
		return false
	}
	sc.emit(name)
	return true
}
