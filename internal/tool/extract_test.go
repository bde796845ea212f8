package tool

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/candgest/internal/extraction"
	"github.com/dgallion1/candgest/internal/parser"
	"github.com/dgallion1/candgest/internal/pipeline"
)

var testImpl = &mcp.Implementation{Name: "candgest-test", Version: "0.1.0"}

func newProcessor(t *testing.T) *pipeline.Processor {
	t.Helper()
	ex, err := extraction.New(extraction.Options{})
	require.NoError(t, err)
	return pipeline.NewProcessor(&parser.FileSource{}, ex, nil)
}

func session(t *testing.T) *mcp.ClientSession {
	t.Helper()
	srv := mcp.NewServer(testImpl, nil)
	Register(srv, newProcessor(t))

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testImpl, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func writeEdital(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "edital.txt")
	content := "1. Assembleia Municipal\nLISTA AM - Partido X\n1 João Silva\n2 Maria Costa\n" +
		"2. Câmara Municipal\nLISTA CM - Partido Y\n1 Carlos Gomes\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractCandidates_Handler(t *testing.T) {
	dir := t.TempDir()
	in := writeEdital(t, dir)
	handler := ExtractCandidates(newProcessor(t))

	tests := []struct {
		name    string
		input   InputExtractCandidates
		wantErr string
	}{
		{"missing path", InputExtractCandidates{UnitCode: "01", OutputPath: "x.csv"}, "path is required"},
		{"missing unit", InputExtractCandidates{Path: in, OutputPath: "x.csv"}, "unit_code is required"},
		{"missing output", InputExtractCandidates{Path: in, UnitCode: "01"}, "output_path is required"},
		{"unreadable document", InputExtractCandidates{Path: filepath.Join(dir, "nope.pdf"), UnitCode: "01", OutputPath: filepath.Join(dir, "x.csv")}, "nope.pdf"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, tc.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	out := filepath.Join(dir, "csv", "out.csv")
	_, got, err := handler(context.Background(), &mcp.CallToolRequest{}, InputExtractCandidates{
		Path: in, UnitCode: "010203", OutputPath: out,
	})
	require.NoError(t, err)
	assert.Equal(t, out, got.OutputPath)
	assert.Equal(t, 3, got.Records)
	assert.Equal(t, 1, got.Pages)
	assert.FileExists(t, out)
}

func TestExtractCandidates_OverMCP(t *testing.T) {
	dir := t.TempDir()
	in := writeEdital(t, dir)
	out := filepath.Join(dir, "out.csv")
	cs := session(t)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "extract_candidates",
		Arguments: map[string]any{
			"path":        in,
			"unit_code":   "010203",
			"output_path": out,
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.NotEmpty(t, res.Content)

	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	var got OutputExtractCandidates
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &got))
	assert.Equal(t, 3, got.Records)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "010203;CM;2;CM;CM;LISTA CM - Partido Y;1;Carlos Gomes;CM;False\r\n")
}

func TestExtractCandidates_ToolErrorOverMCP(t *testing.T) {
	cs := session(t)
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "extract_candidates",
		Arguments: map[string]any{"path": "", "unit_code": "01", "output_path": "x.csv"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
