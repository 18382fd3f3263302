package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))
)

// PrintSummary writes a short terminal report of one run.
func (a *App) PrintSummary(w io.Writer, update Update) {
	fmt.Fprintln(w, strings.Repeat("-", 40))
	if update.Err != nil {
		fmt.Fprintln(w, failStyle.Render("analysis failed: "+update.Err.Error()))
		return
	}
	result := update.Result
	if result == nil {
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s (%s) in %v", result.Path, result.Language, result.Duration)))
	fmt.Fprintf(w, "functions: %d (%d anonymous)\n", len(result.Functions), result.AnonymousCount())
	fmt.Fprintf(w, "dependency graph: %d nodes, %d edges\n", result.Dependencies.NodeCount(), result.Dependencies.EdgeCount())
	fmt.Fprintf(w, "control-flow graph: %d nodes, %d edges\n", result.ControlFlow.NodeCount(), result.ControlFlow.EdgeCount())
	for _, path := range update.Artifacts {
		fmt.Fprintln(w, okStyle.Render("wrote ")+path)
	}
	fmt.Fprintln(w, mutedStyle.Render("run "+result.RunID))
}
