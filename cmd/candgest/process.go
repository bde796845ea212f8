package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/candgest/internal/pipeline"
)

var (
	outPath   string
	threshold float64
	noModel   bool
)

var processCmd = &cobra.Command{
	Use:   "process <document> <unit-code>",
	Short: "Extract candidates from one document into a CSV file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		docPath, unitCode := args[0], args[1]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("threshold") {
			cfg.Threshold = threshold
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		if noModel {
			cfg.ModelURL = ""
		}

		out := outPath
		if out == "" {
			out = defaultOutputPath(docPath)
		}

		proc, model, err := pipeline.Build(cfg, newLogger())
		if err != nil {
			return err
		}
		if model != nil {
			defer model.Close()
		}

		rep, err := proc.Run(cmd.Context(), docPath, unitCode, out)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderSummary(docPath, rep, model != nil))
		return nil
	},
}

// defaultOutputPath swaps the document's extension for .csv. A CSV input
// gets a _candidates suffix instead so it is never overwritten.
func defaultOutputPath(docPath string) string {
	base := strings.TrimSuffix(docPath, filepath.Ext(docPath))
	if out := base + ".csv"; filepath.Clean(out) != filepath.Clean(docPath) {
		return out
	}
	return base + "_candidates.csv"
}

func init() {
	processCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output CSV path (default: document path with .csv extension, or <name>_candidates.csv for CSV input)")
	processCmd.Flags().Float64Var(&threshold, "threshold", 0.55, "Classifier confidence threshold")
	processCmd.Flags().BoolVar(&noModel, "no-model", false, "Ignore MODEL_URL and use textual heuristics only")
	rootCmd.AddCommand(processCmd)
}
