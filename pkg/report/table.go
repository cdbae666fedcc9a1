package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"ragbench/pkg/core"
)

type TableReporter struct {
	Writer io.Writer
}

func (r TableReporter) Report(out core.RunOutput) error {
	table := tablewriter.NewWriter(r.Writer)
	table.Header([]string{"Metric", "Value"})
	table.Append([]string{"Approach", out.Approach})
	table.Append([]string{"Questions", fmt.Sprintf("%d", len(out.Results))})
	table.Append([]string{"Avg IoU", fmt.Sprintf("%.3f", out.AggregateMetrics.AvgIoU)})
	table.Append([]string{"Avg token usage", fmt.Sprintf("%.0f", out.AggregateMetrics.AvgTokenUsage)})
	table.Append([]string{"Avg precision", fmt.Sprintf("%.3f", out.AggregateMetrics.AvgPrecision)})
	table.Append([]string{"Avg recall", fmt.Sprintf("%.3f", out.AggregateMetrics.AvgRecall)})
	if out.Tokenizer != "" {
		table.Append([]string{"Tokenizer", out.Tokenizer})
	}
	table.Render()
	return nil
}
