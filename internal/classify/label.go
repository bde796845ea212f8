// Package classify defines the line classifier and name extractor
// collaborators used by the extraction pipeline, plus an HTTP client for
// the model server that hosts them.
package classify

import (
	"context"
	"fmt"
	"strings"
)

// Label is the class a line classifier assigns to a normalized line.
type Label int

const (
	LabelOther Label = iota
	LabelSectionMarker
	LabelListHeader
	LabelCandidate
)

// Labels lists every label in declaration order.
var Labels = []Label{LabelOther, LabelSectionMarker, LabelListHeader, LabelCandidate}

func (l Label) String() string {
	switch l {
	case LabelOther:
		return "OTHER"
	case LabelSectionMarker:
		return "SECTION_MARKER"
	case LabelListHeader:
		return "LIST_HEADER"
	case LabelCandidate:
		return "CANDIDATE"
	}
	return fmt.Sprintf("Label(%d)", int(l))
}

// labelAliases maps wire names to labels. The model server may answer
// with the names the models were trained on.
var labelAliases = map[string]Label{
	"OTHER":          LabelOther,
	"OUTRO":          LabelOther,
	"SECTION_MARKER": LabelSectionMarker,
	"SECAO":          LabelSectionMarker,
	"LIST_HEADER":    LabelListHeader,
	"HEADER_LISTA":   LabelListHeader,
	"CANDIDATE":      LabelCandidate,
	"CANDIDATO":      LabelCandidate,
}

// ParseLabel resolves a wire label name, case-insensitively.
func ParseLabel(s string) (Label, error) {
	l, ok := labelAliases[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return LabelOther, fmt.Errorf("unknown label %q", s)
	}
	return l, nil
}

// Result is a classifier verdict for one line.
type Result struct {
	Label      Label
	Confidence float64
}

// Silent is the result used when the classifier has nothing to say.
var Silent = Result{Label: LabelOther, Confidence: 0}

// Gate returns the label when confidence reaches threshold, LabelOther otherwise.
func (r Result) Gate(threshold float64) Label {
	if r.Confidence < threshold {
		return LabelOther
	}
	return r.Label
}

// Classifier assigns a label and confidence to a normalized line.
type Classifier interface {
	Classify(ctx context.Context, line string) (Result, error)
}

// NameExtractor finds the candidate name span in a normalized line.
// It returns "" when no name is identifiable.
type NameExtractor interface {
	ExtractName(ctx context.Context, line string) (string, error)
}

// Nop is a classifier and name extractor that never answers. With it the
// extraction runs on textual heuristics alone.
type Nop struct{}

func (Nop) Classify(context.Context, string) (Result, error) { return Silent, nil }

func (Nop) ExtractName(context.Context, string) (string, error) { return "", nil }
