// Package tool exposes candidate extraction as MCP tools.
package tool

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dgallion1/candgest/internal/pipeline"
)

// MetadataExtractCandidates describes the extract_candidates tool.
var MetadataExtractCandidates = &mcp.Tool{
	Name: "extract_candidates",
	Description: "Extract candidate records from an electoral-list document (PDF, DOCX, HTML, " +
		"Markdown, TXT or CSV) on the server's filesystem and write them as a semicolon-separated " +
		"CSV with the columns DTMNFR;ORGAO;TIPO;SIGLA;SIMBOLO;NOME_LISTA;NUM_ORDEM;NOME_CANDIDATO;" +
		"PARTIDO_PROPONENTE;INDEPENDENTE. Missing output directories are created and an existing " +
		"output file is overwritten.",
}

// InputExtractCandidates is the input for the extract_candidates tool.
type InputExtractCandidates struct {
	Path       string `json:"path" jsonschema:"path of the document to read"`
	UnitCode   string `json:"unit_code" jsonschema:"territorial unit code written to the DTMNFR column"`
	OutputPath string `json:"output_path" jsonschema:"path of the CSV file to write"`
}

// OutputExtractCandidates is the output for the extract_candidates tool.
type OutputExtractCandidates struct {
	OutputPath string `json:"output_path"`
	Records    int    `json:"records"`
	Pages      int    `json:"pages"`
	Lines      int    `json:"lines"`
	Dropped    int    `json:"dropped_lines"`
	// ClassifierErrors counts lines that fell back to heuristics because
	// the model server failed.
	ClassifierErrors int `json:"classifier_errors"`
}

// Register adds the extraction tools to srv.
func Register(srv *mcp.Server, p *pipeline.Processor) {
	mcp.AddTool(srv, MetadataExtractCandidates, ExtractCandidates(p))
}

// ExtractCandidates returns the handler for extract_candidates.
func ExtractCandidates(p *pipeline.Processor) mcp.ToolHandlerFor[InputExtractCandidates, OutputExtractCandidates] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in InputExtractCandidates) (*mcp.CallToolResult, OutputExtractCandidates, error) {
		if strings.TrimSpace(in.Path) == "" {
			return nil, OutputExtractCandidates{}, errors.New("path is required")
		}
		if strings.TrimSpace(in.UnitCode) == "" {
			return nil, OutputExtractCandidates{}, errors.New("unit_code is required")
		}
		if strings.TrimSpace(in.OutputPath) == "" {
			return nil, OutputExtractCandidates{}, errors.New("output_path is required")
		}

		rep, err := p.Run(ctx, in.Path, in.UnitCode, in.OutputPath)
		if err != nil {
			return nil, OutputExtractCandidates{}, err
		}
		return nil, OutputExtractCandidates{
			OutputPath:       rep.OutputPath,
			Records:          rep.Stats.Records,
			Pages:            rep.Stats.Pages,
			Lines:            rep.Stats.Lines,
			Dropped:          rep.Stats.Dropped,
			ClassifierErrors: rep.Stats.ClassifierErrors,
		}, nil
	}
}
