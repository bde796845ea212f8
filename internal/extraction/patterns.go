package extraction

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	regularSection    = regexp.MustCompile(`(?i)CANDIDAT[OA]S?\s+EFETIV[OA]S`)
	substituteSection = regexp.MustCompile(`(?i)CANDIDAT[OA]S?\s+SUPLENTES`)

	// ordinalLine matches "<digits><optional separator> <remainder>".
	ordinalLine = regexp.MustCompile(`^\s*(\d+)\s*[.\-ºo)]?\s+(.+?)\s*$`)

	// bodyHeading matches a line that is nothing but a body heading, such as
	// "2. Câmara Municipal" or "Assembleia de Freguesia de Sé". A hyphen
	// means the line carries more than the heading.
	bodyHeading = regexp.MustCompile(`(?i)^\s*(?:\d+\s*[.)]\s*)?(?:ASSEMBLEIA\s+MUNICIPAL|C[ÂA]MARA\s+MUNICIPAL|ASSEMBLEIA\s+DE\s+FREGUESIA)(?:\s+D[AEO]S?\s+[^-]+)?\s*$`)

	secondaryMarker = regexp.MustCompile(`(?i)\b2\.\s*C[ÂA]MARA\s+MUNICIPAL\b`)
)

// DefaultPartyHints are the tokens that, together with a hyphen, mark a
// list header when the classifier is silent. Entries are regexp fragments.
var DefaultPartyHints = []string{
	"PSD", "CDS", "PS", "CHEGA", "IL", "VOLT", "CDU", "PAN", "BLOCO",
	"LIVRE", "COLIGA", "ALIAN[ÇC]A", "LISTAS?", "MOVIMENTO",
}

func compilePartyHints(hints []string) (*regexp.Regexp, error) {
	if len(hints) == 0 {
		hints = DefaultPartyHints
	}
	re, err := regexp.Compile(`(?i)\b(` + strings.Join(hints, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("party hints: %w", err)
	}
	return re, nil
}

// matchSection returns the section a line announces, if any.
func matchSection(line string) (Section, bool) {
	if regularSection.MatchString(line) {
		return SectionRegular, true
	}
	if substituteSection.MatchString(line) {
		return SectionSubstitute, true
	}
	return SectionUnset, false
}

// ordinalRemainder returns the text after a leading ordinal.
func ordinalRemainder(line string) (string, bool) {
	m := ordinalLine.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[2], true
}
