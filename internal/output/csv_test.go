package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/candgest/internal/extraction"
)

const headerLine = "DTMNFR;ORGAO;TIPO;SIGLA;SIMBOLO;NOME_LISTA;NUM_ORDEM;NOME_CANDIDATO;PARTIDO_PROPONENTE;INDEPENDENTE\r\n"

func TestEncode_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "\ufeff" + headerLine
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestEncode_Rows(t *testing.T) {
	recs := []extraction.Record{
		{UnitCode: "0101", Body: "AM", Type: "2", Sigla: "XYZ", Symbol: "XYZ",
			ListName: "XYZ - Lista de Cidadãos", Order: 1, Name: "João Silva", Party: "XYZ"},
		{UnitCode: "0101", Body: "CM", Type: "3", Sigla: "PS", Symbol: "PS",
			ListName: "PS; Partido", Order: 2, Name: "Maria Costa", Party: "PS"},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, recs); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "\ufeff" + headerLine +
		"0101;AM;2;XYZ;XYZ;XYZ - Lista de Cidadãos;1;João Silva;XYZ;False\r\n" +
		"0101;CM;3;PS;PS;\"PS; Partido\";2;Maria Costa;PS;False\r\n"
	if buf.String() != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWriteFile_CreatesDirsAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.csv")

	rec := extraction.Record{UnitCode: "01", Body: "AM", Type: "2", Sigla: "PS", Symbol: "PS", Order: 1, Name: "Ana", Party: "PS"}
	if err := WriteFile(path, []extraction.Record{rec, rec}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteFile(path, nil); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(data), "\ufeff") {
		t.Error("expected BOM prefix")
	}
	if got := strings.Count(string(data), "\r\n"); got != 1 {
		t.Errorf("expected only the header row after overwrite, got %d rows", got)
	}
}

func TestWriteFile_UnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(filepath.Join(blocker, "out.csv"), nil); err == nil {
		t.Error("expected error when parent is a regular file")
	}
}
