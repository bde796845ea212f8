package extraction

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type siglaRule struct {
	name    string
	resolve func(line string) string
}

var (
	acronymBeforeLista  = regexp.MustCompile(`(?i)([\p{L}\p{N}]+)\s*-\s*LISTA\b`)
	acronymBeforeHyphen = regexp.MustCompile(`([\p{L}\p{N}]+)\s*-`)
	letterAfterLista    = regexp.MustCompile(`(?i)\bLISTA\s+([\p{L}\p{N}])(?:[^\p{L}\p{N}]|$)`)
	wordToken           = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

var siglaStopwords = map[string]bool{
	"DE": true, "DA": true, "DO": true, "DAS": true, "DOS": true,
	"E": true, "A": true, "O": true, "AS": true, "OS": true,
	"EM": true, "PARA": true, "POR": true, "COM": true,
	"LISTA": true, "LISTAS": true,
}

func firstGroup(re *regexp.Regexp) func(string) string {
	return func(line string) string {
		m := re.FindStringSubmatch(line)
		if m == nil {
			return ""
		}
		return m[1]
	}
}

func firstSignificantToken(line string) string {
	for _, tok := range wordToken.FindAllString(line, -1) {
		if utf8.RuneCountInString(tok) < 2 {
			continue
		}
		if siglaStopwords[strings.ToUpper(tok)] {
			continue
		}
		return tok
	}
	return ""
}

// siglaRules are tried in order; the first non-empty result wins.
var siglaRules = []siglaRule{
	{"acronym-before-lista", firstGroup(acronymBeforeLista)},
	{"acronym-before-hyphen", firstGroup(acronymBeforeHyphen)},
	{"letter-after-lista", firstGroup(letterAfterLista)},
	{"first-token", firstSignificantToken},
}

// ResolveSigla derives the party or list code from a list header line.
// It returns "" when no rule matches.
func ResolveSigla(header string) string {
	s, _ := resolveSigla(header)
	return s
}

func resolveSigla(header string) (sigla, rule string) {
	for _, r := range siglaRules {
		if s := r.resolve(header); s != "" {
			return strings.ToUpper(s), r.name
		}
	}
	return "", ""
}
