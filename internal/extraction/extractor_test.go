package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/candgest/internal/classify"
	"github.com/dgallion1/candgest/internal/document"
)

// scripted answers from fixed verdict and name tables.
type scripted struct {
	verdicts map[string]classify.Result
	names    map[string]string
	failing  map[string]bool
}

func (s scripted) Classify(_ context.Context, line string) (classify.Result, error) {
	if s.failing[line] {
		return classify.Silent, errors.New("model server unavailable")
	}
	if r, ok := s.verdicts[line]; ok {
		return r, nil
	}
	return classify.Silent, nil
}

func (s scripted) ExtractName(_ context.Context, line string) (string, error) {
	if s.failing[line] {
		return "", errors.New("model server unavailable")
	}
	return s.names[line], nil
}

func docOf(pages ...[]string) *document.Document {
	d := &document.Document{}
	for i, lines := range pages {
		d.Pages = append(d.Pages, document.Page{Number: i + 1, Lines: lines})
	}
	return d
}

func extract(t *testing.T, opts Options, doc *document.Document) *Result {
	t.Helper()
	e, err := New(opts)
	require.NoError(t, err)
	res, err := e.Extract(context.Background(), "010203", doc)
	require.NoError(t, err)
	return res
}

type summary struct {
	Body  string
	Type  string
	Sigla string
	Order int
	Name  string
}

func summarize(recs []Record) []summary {
	out := make([]summary, 0, len(recs))
	for _, r := range recs {
		out = append(out, summary{r.Body, r.Type, r.Sigla, r.Order, r.Name})
	}
	return out
}

func TestExtract_ScenarioA(t *testing.T) {
	res := extract(t, Options{}, docOf([]string{
		"XYZ - Lista de Cidadãos",
		"1 João Silva",
		"2 Maria Costa",
	}))

	require.Len(t, res.Records, 2)
	assert.Equal(t, []summary{
		{"AM", "2", "XYZ", 1, "João Silva"},
		{"AM", "2", "XYZ", 2, "Maria Costa"},
	}, summarize(res.Records))

	r := res.Records[0]
	assert.Equal(t, "010203", r.UnitCode)
	assert.Equal(t, "XYZ", r.Symbol)
	assert.Equal(t, "XYZ", r.Party)
	assert.Equal(t, "XYZ - Lista de Cidadãos", r.ListName)
	assert.False(t, r.Independent)
}

func TestExtract_BodyLatch(t *testing.T) {
	res := extract(t, Options{}, docOf([]string{
		"1. Assembleia Municipal",
		"LISTA AM - Partido X",
		"1 João Silva",
		"2 Maria Costa",
		"2. Câmara Municipal",
		"LISTA CM - Partido Y",
		"1 Carlos Gomes",
	}))

	assert.Equal(t, []summary{
		{"AM", "2", "AM", 1, "João Silva"},
		{"AM", "2", "AM", 2, "Maria Costa"},
		{"CM", "2", "CM", 1, "Carlos Gomes"},
	}, summarize(res.Records))
	assert.Equal(t, 2, res.Stats.ByRule["body-heading"])
}

func TestExtract_BodyLatchPersistsAcrossPages(t *testing.T) {
	res := extract(t, Options{}, docOf(
		[]string{"PS - Partido Socialista", "1 Ana Reis"},
		[]string{"2. Câmara Municipal", "PSD - Partido Social Democrata", "1 Rui Sá"},
		[]string{"1. Assembleia Municipal", "CDU - Coligação", "1 Eva Lopes"},
	))

	require.Len(t, res.Records, 3)
	assert.Equal(t, "AM", res.Records[0].Body)
	assert.Equal(t, "CM", res.Records[1].Body)
	assert.Equal(t, "CM", res.Records[2].Body, "body never reverts")
}

func TestExtract_CounterResets(t *testing.T) {
	res := extract(t, Options{}, docOf([]string{
		"PS - Partido Socialista",
		"Candidatos efetivos",
		"1 Ana Reis",
		"2 Rui Sá",
		"3 Eva Lopes",
		"Candidatos suplentes",
		"1 Luís Vaz",
		"2 Inês Cruz",
		"CDU - Coligação Democrática Unitária",
		"1 Paulo Dias",
	}))

	assert.Equal(t, []summary{
		{"AM", "2", "PS", 1, "Ana Reis"},
		{"AM", "2", "PS", 2, "Rui Sá"},
		{"AM", "2", "PS", 3, "Eva Lopes"},
		{"AM", "3", "PS", 1, "Luís Vaz"},
		{"AM", "3", "PS", 2, "Inês Cruz"},
		{"AM", "2", "CDU", 1, "Paulo Dias"},
	}, summarize(res.Records))
}

func TestExtract_OrderComesFromSequenceNotSourceNumbering(t *testing.T) {
	res := extract(t, Options{}, docOf([]string{
		"PS - Partido Socialista",
		"7 Ana Reis",
		"9 Rui Sá",
	}))

	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.Records[0].Order)
	assert.Equal(t, 2, res.Records[1].Order)
}

// Candidate lines seen before any list header are dropped rather than
// buffered until a sigla appears. This is a known limitation.
func TestExtract_NoSiglaDropsCandidates(t *testing.T) {
	res := extract(t, Options{}, docOf([]string{
		"1 João Silva",
		"2 Maria Costa",
		"XYZ - Lista de Cidadãos",
		"1 Carlos Gomes",
	}))

	require.Len(t, res.Records, 1)
	assert.Equal(t, "Carlos Gomes", res.Records[0].Name)
	assert.Equal(t, 1, res.Records[0].Order)
	assert.Equal(t, 2, res.Stats.Dropped)
}

func TestExtract_EmptyDocument(t *testing.T) {
	res := extract(t, Options{}, &document.Document{})
	assert.Empty(t, res.Records)
	assert.Zero(t, res.Stats.Lines)
}

func TestExtract_SkipsLinesThatNormalizeEmpty(t *testing.T) {
	res := extract(t, Options{}, docOf([]string{"PS - Partido", "   ", "1 Ana Reis"}))
	assert.Equal(t, 2, res.Stats.Lines)
	require.Len(t, res.Records, 1)
}

func TestExtract_ClassifierDrivenRules(t *testing.T) {
	cls := scripted{
		verdicts: map[string]classify.Result{
			"Movimento Independente Por Todos": {Label: classify.LabelListHeader, Confidence: 0.9},
			"Os candidatos efetivos são":       {Label: classify.LabelSectionMarker, Confidence: 0.8},
			"Ana Reis, professora":             {Label: classify.LabelCandidate, Confidence: 0.7},
			"Rui Sá":                           {Label: classify.LabelCandidate, Confidence: 0.99},
		},
		names: map[string]string{
			"Ana Reis, professora": "Ana Reis",
		},
	}
	res := extract(t, Options{Classifier: cls, Names: cls}, docOf([]string{
		"Movimento Independente Por Todos",
		"Os candidatos efetivos são",
		"Ana Reis, professora",
		"Rui Sá",
	}))

	assert.Equal(t, []summary{
		{"AM", "2", "MOVIMENTO", 1, "Ana Reis"},
		{"AM", "2", "MOVIMENTO", 2, "Rui Sá"},
	}, summarize(res.Records))
	assert.Equal(t, 1, res.Stats.ByRule["classifier-header"])
	assert.Equal(t, 1, res.Stats.ByRule["classifier-section"])
	assert.Equal(t, 2, res.Stats.ByRule["classifier-candidate"])
	assert.Equal(t, 1, res.Stats.NameFallbacks)
}

func TestExtract_ThresholdGatesClassifier(t *testing.T) {
	cls := scripted{verdicts: map[string]classify.Result{
		"PS - Partido Socialista": {Label: classify.LabelListHeader, Confidence: 0.9},
		"Ana Reis":                {Label: classify.LabelCandidate, Confidence: 0.55},
		"Rui Sá":                  {Label: classify.LabelCandidate, Confidence: 0.5499},
	}}
	res := extract(t, Options{Classifier: cls}, docOf([]string{
		"PS - Partido Socialista",
		"Ana Reis",
		"Rui Sá",
	}))

	require.Len(t, res.Records, 1, "a verdict below threshold behaves as OTHER")
	assert.Equal(t, "Ana Reis", res.Records[0].Name)
	assert.Equal(t, 1, res.Stats.Dropped)
}

func TestExtract_CustomThreshold(t *testing.T) {
	cls := scripted{verdicts: map[string]classify.Result{
		"PS - Partido Socialista": {Label: classify.LabelListHeader, Confidence: 0.9},
		"Ana Reis":                {Label: classify.LabelCandidate, Confidence: 0.7},
	}}
	res := extract(t, Options{Classifier: cls, Threshold: 0.8}, docOf([]string{
		"PS - Partido Socialista",
		"Ana Reis",
	}))
	assert.Empty(t, res.Records)
}

func TestExtract_SectionVerdictWithoutPatternFallsThrough(t *testing.T) {
	cls := scripted{verdicts: map[string]classify.Result{
		"3 Eva Lopes": {Label: classify.LabelSectionMarker, Confidence: 0.9},
	}}
	res := extract(t, Options{Classifier: cls}, docOf([]string{
		"PS - Partido Socialista",
		"3 Eva Lopes",
	}))

	require.Len(t, res.Records, 1)
	assert.Equal(t, "Eva Lopes", res.Records[0].Name)
	assert.Equal(t, 1, res.Stats.ByRule["fallback-candidate"])
}

func TestExtract_ClassifierErrorsDegradeToFallbacks(t *testing.T) {
	lines := []string{"PS - Partido Socialista", "Candidatos suplentes", "1 Ana Reis"}
	failing := map[string]bool{}
	for _, l := range lines {
		failing[l] = true
	}
	cls := scripted{failing: failing}
	res := extract(t, Options{Classifier: cls, Names: cls}, docOf(lines))

	assert.Equal(t, []summary{{"AM", "3", "PS", 1, "Ana Reis"}}, summarize(res.Records))
	assert.Equal(t, 3, res.Stats.ClassifierErrors)
}

func TestExtract_NameExtractorFallbacks(t *testing.T) {
	cls := scripted{
		verdicts: map[string]classify.Result{
			"PS - Partido Socialista": {Label: classify.LabelListHeader, Confidence: 0.9},
			"1. Ana Reis":             {Label: classify.LabelCandidate, Confidence: 0.9},
			"Rui Sá":                  {Label: classify.LabelCandidate, Confidence: 0.9},
			"3 Eva Lopes":             {Label: classify.LabelCandidate, Confidence: 0.9},
		},
		failing: map[string]bool{},
	}
	names := scripted{failing: map[string]bool{"3 Eva Lopes": true}}
	res := extract(t, Options{Classifier: cls, Names: names}, docOf([]string{
		"PS - Partido Socialista",
		"1. Ana Reis",
		"Rui Sá",
		"3 Eva Lopes",
	}))

	require.Len(t, res.Records, 3)
	assert.Equal(t, "Ana Reis", res.Records[0].Name, "ordinal remainder")
	assert.Equal(t, "Rui Sá", res.Records[1].Name, "whole line")
	assert.Equal(t, "Eva Lopes", res.Records[2].Name, "extractor error")
	assert.Equal(t, 3, res.Stats.NameFallbacks)
	assert.Equal(t, 1, res.Stats.NameErrors)
}

func TestExtract_NormalizesTypography(t *testing.T) {
	res := extract(t, Options{}, docOf([]string{
		"BE – Bloco de Esquerda",
		"1 Ana “Nita” Reis",
	}))

	require.Len(t, res.Records, 1)
	assert.Equal(t, "BE - Bloco de Esquerda", res.Records[0].ListName)
	assert.Equal(t, `Ana "Nita" Reis`, res.Records[0].Name)
	assert.Equal(t, "BE", res.Records[0].Sigla)
}

func TestExtract_CustomPartyHints(t *testing.T) {
	doc := docOf([]string{"NOS - Novo Olhar", "1 Ana Reis"})

	assert.Empty(t, extract(t, Options{}, doc).Records)

	res := extract(t, Options{PartyHints: []string{"NOVO"}}, doc)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "NOS", res.Records[0].Sigla)
}

func TestNew_InvalidPartyHint(t *testing.T) {
	_, err := New(Options{PartyHints: []string{"("}})
	require.Error(t, err)
}

func TestExtract_Deterministic(t *testing.T) {
	doc := docOf(
		[]string{"1. Assembleia Municipal", "PS - Partido Socialista", "1 Ana Reis", "Candidatos suplentes", "1 Rui Sá"},
		[]string{"2. Câmara Municipal", "Lista A", "XYZ - Lista A", "1 Eva Lopes"},
	)
	first := extract(t, Options{}, doc)
	second := extract(t, Options{}, doc)
	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.Stats, second.Stats)
}

func TestExtract_ContextCancelled(t *testing.T) {
	e, err := New(Options{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Extract(ctx, "01", docOf([]string{"PS - x", "1 Ana"}))
	require.ErrorIs(t, err, context.Canceled)
}

func TestExtract_HeaderVerdictBeatsBodyHeadingShape(t *testing.T) {
	cls := scripted{verdicts: map[string]classify.Result{
		"Câmara Municipal de Braga - Lista PS": {Label: classify.LabelListHeader, Confidence: 0.97},
	}}
	res := extract(t, Options{Classifier: cls}, docOf([]string{
		"CDU - Coligação Democrática Unitária",
		"1 Ana Reis",
		"Câmara Municipal de Braga - Lista PS",
		"1 Rui Sá",
	}))

	require.Len(t, res.Records, 2)
	assert.Equal(t, "CDU", res.Records[0].Sigla)
	rui := res.Records[1]
	assert.Equal(t, "Rui Sá", rui.Name)
	assert.Equal(t, "Câmara Municipal de Braga - Lista PS", rui.ListName)
	assert.Equal(t, "BRAGA", rui.Sigla)
	assert.Equal(t, 1, rui.Order)
	assert.Zero(t, res.Stats.ByRule["body-heading"])
	assert.Equal(t, 1, res.Stats.ByRule["classifier-header"])
}

func TestBodyHeadingPattern(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"2. Câmara Municipal", true},
		{"1) ASSEMBLEIA MUNICIPAL", true},
		{"Câmara Municipal de Braga", true},
		{"Assembleia de Freguesia de Sé", true},
		{"Assembleia Municipal do Porto", true},
		{"Câmara Municipal de Braga - Lista PS", false},
		{"Câmara Municipal - PS", false},
		{"1 Ana Reis", false},
	}
	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			assert.Equal(t, tc.want, bodyHeading.MatchString(tc.line))
		})
	}
}

func TestExtract_HyphenatedCandidateWithHintStaysInList(t *testing.T) {
	res := extract(t, Options{}, docOf([]string{
		"PS - Partido Socialista",
		"1 - Rui Sá",
		"2 - Ana Lista",
		"3 - Movimento Costa",
		"1 - CDU - Coligação Democrática Unitária",
		"1 - Eva Lopes",
	}))

	require.Len(t, res.Records, 4)
	assert.Equal(t, []summary{
		{"AM", "2", "PS", 1, "Rui Sá"},
		{"AM", "2", "PS", 2, "Ana Lista"},
		{"AM", "2", "PS", 3, "Movimento Costa"},
	}, summarize(res.Records[:3]))

	eva := res.Records[3]
	assert.Equal(t, "Eva Lopes", eva.Name)
	assert.Equal(t, "1 - CDU - Coligação Democrática Unitária", eva.ListName, "a numbered header with its own hyphen still opens a list")
	assert.Equal(t, 1, eva.Order)
	assert.Equal(t, 2, res.Stats.ByRule["fallback-header"])
}
