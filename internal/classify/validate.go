package classify

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// validateResponse turns a wire verdict into a Result. Unknown labels and
// confidences outside [0,1] are rejected so the caller falls back to
// heuristics instead of trusting a malformed answer.
func validateResponse(label string, confidence float64) (Result, error) {
	l, err := ParseLabel(label)
	if err != nil {
		return Silent, err
	}
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return Silent, fmt.Errorf("confidence out of range: %v", confidence)
	}
	return Result{Label: l, Confidence: confidence}, nil
}

var (
	spaceRun      = regexp.MustCompile(`\s+`)
	edgePunctRun  = regexp.MustCompile(`^[\s\-–—.,;:]+|[\s\-–—.,;:]+$`)
	subwordMarker = regexp.MustCompile(`\s*##`)
)

// CleanName normalizes a name span from the extractor: collapses
// whitespace, glues subword pieces and trims separator punctuation.
func CleanName(s string) string {
	s = subwordMarker.ReplaceAllString(s, "")
	s = spaceRun.ReplaceAllString(s, " ")
	s = edgePunctRun.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
