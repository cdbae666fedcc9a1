package report

import (
	"fmt"
	"io"
	"strings"

	"ragbench/pkg/core"
)

type MarkdownReporter struct {
	Writer io.Writer
}

func (r MarkdownReporter) Report(out core.RunOutput) error {
	w := r.Writer
	if _, err := fmt.Fprintf(w, "# Evaluation Run: %s\n\n", out.Approach); err != nil {
		return err
	}
	if out.Tokenizer != "" {
		if _, err := fmt.Fprintf(w, "- Tokenizer: %s\n", out.Tokenizer); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "- Questions: %d\n\n", len(out.Results)); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "## Aggregates\n\n| Metric | Value |\n|---|---|\n"); err != nil {
		return err
	}
	agg := out.AggregateMetrics
	lines := []struct {
		name  string
		value string
	}{
		{"Avg IoU", fmt.Sprintf("%.3f", agg.AvgIoU)},
		{"Avg token usage", fmt.Sprintf("%.0f", agg.AvgTokenUsage)},
		{"Avg precision", fmt.Sprintf("%.3f", agg.AvgPrecision)},
		{"Avg recall", fmt.Sprintf("%.3f", agg.AvgRecall)},
	}
	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "| %s | %s |\n", line.name, line.value); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n## Questions\n\n| ID | Type | IoU | Tokens | Retrieved |\n|---|---|---|---|---|\n"); err != nil {
		return err
	}
	for _, result := range out.Results {
		if _, err := fmt.Fprintf(w, "| %s | %s | %.3f | %d | %s |\n",
			result.QuestionID,
			result.Type,
			result.Metrics.IoU,
			result.Metrics.TokenUsage,
			escapePipe(strings.Join(result.Retrieved, ", ")),
		); err != nil {
			return err
		}
	}
	return nil
}

func escapePipe(input string) string {
	if input == "" {
		return ""
	}
	out := make([]rune, 0, len(input))
	for _, r := range input {
		switch r {
		case '|':
			out = append(out, '\\', r)
		case '\n', '\r':
			out = append(out, ' ')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
