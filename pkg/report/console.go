package report

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"ragbench/pkg/compare"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	gainStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// ConsoleSummary prints a compact comparison to the terminal. Styling is
// applied only when writing to a TTY.
func ConsoleSummary(w io.Writer, summary *compare.Summary) {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	agg := summary.AggregateComparison
	fmt.Fprintln(w, style(styled, headerStyle, "COMPARISON SUMMARY"))
	fmt.Fprintf(w, "%-14s %12s %12s %12s\n", "Metric", "RAG", "Agentic", "Diff")

	rows := []struct {
		name          string
		rag, agentic  float64
		format        string
		higherIsWorse bool
	}{
		{"IoU", agg.RAG.AvgIoU, agg.Agentic.AvgIoU, "%.3f", false},
		{"Token usage", agg.RAG.AvgTokenUsage, agg.Agentic.AvgTokenUsage, "%.0f", true},
		{"Precision", agg.RAG.AvgPrecision, agg.Agentic.AvgPrecision, "%.3f", false},
		{"Recall", agg.RAG.AvgRecall, agg.Agentic.AvgRecall, "%.3f", false},
	}
	for _, row := range rows {
		diff := row.agentic - row.rag
		signedFormat := "%+" + row.format[1:]
		diffText := fmt.Sprintf("%12s", fmt.Sprintf(signedFormat, diff))
		improved := diff > 0
		if row.higherIsWorse {
			improved = diff < 0
		}
		if diff != 0 {
			if improved {
				diffText = style(styled, gainStyle, diffText)
			} else {
				diffText = style(styled, lossStyle, diffText)
			}
		}
		fmt.Fprintf(w, "%-14s %12s %12s %s\n",
			row.name,
			fmt.Sprintf(row.format, row.rag),
			fmt.Sprintf(row.format, row.agentic),
			diffText,
		)
	}
}

func style(enabled bool, s lipgloss.Style, text string) string {
	if !enabled {
		return text
	}
	return s.Render(text)
}
