package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"ragbench/pkg/core"
)

type CSVReporter struct {
	Writer io.Writer
}

func (r CSVReporter) Report(out core.RunOutput) error {
	writer := csv.NewWriter(r.Writer)
	header := []string{"question_id", "type", "iou", "token_usage", "precision", "recall", "retrieved"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, result := range out.Results {
		record := []string{
			result.QuestionID,
			result.Type,
			strconv.FormatFloat(result.Metrics.IoU, 'f', 4, 64),
			strconv.Itoa(result.Metrics.TokenUsage),
			strconv.FormatFloat(result.Metrics.Precision, 'f', 4, 64),
			strconv.FormatFloat(result.Metrics.Recall, 'f', 4, 64),
			strings.Join(result.Retrieved, " "),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
