package extraction

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var punctReplacer = strings.NewReplacer(
	"–", "-", // en dash
	"—", "-", // em dash
	"’", "'",
	"‘", "'",
	"“", `"`,
	"”", `"`,
)

// Normalize canonicalizes a raw line: typographic dashes and quotes become
// their ASCII forms, combining sequences are composed (NFC) and surrounding
// whitespace is stripped.
func Normalize(raw string) string {
	s := norm.NFC.String(raw)
	s = punctReplacer.Replace(s)
	return strings.TrimSpace(s)
}
