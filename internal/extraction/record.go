package extraction

import "strconv"

// Header is the fixed column header of the candidate table.
var Header = []string{
	"DTMNFR",
	"ORGAO",
	"TIPO",
	"SIGLA",
	"SIMBOLO",
	"NOME_LISTA",
	"NUM_ORDEM",
	"NOME_CANDIDATO",
	"PARTIDO_PROPONENTE",
	"INDEPENDENTE",
}

// Record is one candidate row. Records are never modified once emitted.
type Record struct {
	UnitCode    string `json:"unit_code"`
	Body        string `json:"body"`
	Type        string `json:"type"`
	Sigla       string `json:"sigla"`
	Symbol      string `json:"symbol"`
	ListName    string `json:"list_name"`
	Order       int    `json:"order"`
	Name        string `json:"name"`
	Party       string `json:"party"`
	Independent bool   `json:"independent"`
}

func newRecord(unitCode string, st *State, order int, name string) Record {
	return Record{
		UnitCode: unitCode,
		Body:     st.Body.Code(),
		Type:     st.Section.TypeCode(),
		Sigla:    st.Sigla,
		Symbol:   st.Sigla,
		ListName: st.ListName,
		Order:    order,
		Name:     name,
		Party:    st.Sigla,
	}
}

// Row renders the record in Header column order.
func (r Record) Row() []string {
	independent := "False"
	if r.Independent {
		independent = "True"
	}
	return []string{
		r.UnitCode,
		r.Body,
		r.Type,
		r.Sigla,
		r.Symbol,
		r.ListName,
		strconv.Itoa(r.Order),
		r.Name,
		r.Party,
		independent,
	}
}
