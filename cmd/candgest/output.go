package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dgallion1/candgest/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)
)

func renderSummary(docPath string, rep *pipeline.Report, withModel bool) string {
	st := rep.Stats
	mode := "heuristics only"
	if withModel {
		mode = "classifier + heuristics"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("candgest") + " " + dimStyle.Render(docPath) + "\n\n")
	fmt.Fprintf(&b, "%s %d\n", dimStyle.Render("pages    "), st.Pages)
	fmt.Fprintf(&b, "%s %d\n", dimStyle.Render("lines    "), st.Lines)
	fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("records  "), successStyle.Render(fmt.Sprint(st.Records)))

	dropped := fmt.Sprint(st.Dropped)
	if st.Dropped > 0 {
		dropped = warnStyle.Render(dropped)
	}
	fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("dropped  "), dropped)
	fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("mode     "), mode)
	if st.ClassifierErrors > 0 {
		fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("cls errs "), warnStyle.Render(fmt.Sprint(st.ClassifierErrors)))
	}

	if len(st.ByRule) > 0 {
		b.WriteString("\n" + dimStyle.Render("rules") + "\n")
		for _, name := range slices.Sorted(maps.Keys(st.ByRule)) {
			fmt.Fprintf(&b, "  %-22s %d\n", name, st.ByRule[name])
		}
	}
	b.WriteString("\n" + successStyle.Render("wrote ") + rep.OutputPath)

	return boxStyle.Render(b.String())
}
