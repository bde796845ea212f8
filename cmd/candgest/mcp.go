package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/dgallion1/candgest/internal/pipeline"
	"github.com/dgallion1/candgest/internal/tool"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the extract_candidates tool over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		proc, model, err := pipeline.Build(cfg, newLogger())
		if err != nil {
			return err
		}
		if model != nil {
			defer model.Close()
		}

		srv := mcp.NewServer(&mcp.Implementation{Name: "candgest", Version: "0.1.0"}, nil)
		tool.Register(srv, proc)
		return srv.Run(cmd.Context(), &mcp.StdioTransport{})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
