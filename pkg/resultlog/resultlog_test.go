package resultlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"ragbench/pkg/core"

	"github.com/stretchr/testify/require"
)

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "rag_results.json")
	out := core.RunOutput{
		Approach:  "rag",
		Model:     "text-embedding-3-small",
		TopK:      5,
		Tokenizer: "cl100k_base",
		AggregateMetrics: core.AggregateMetrics{
			AvgIoU:        0.42,
			AvgTokenUsage: 1234.5,
			AvgPrecision:  0.5,
			AvgRecall:     0.4,
		},
		Results: []core.QuestionResult{
			{
				QuestionID:  "q1",
				Question:    "where?",
				Type:        "factual",
				GroundTruth: []string{"a.ts"},
				Retrieved:   []string{"a.ts", "b.ts"},
				Metrics:     core.Metrics{IoU: 0.5, TokenUsage: 100, Precision: 0.5, Recall: 1},
			},
		},
	}

	require.NoError(t, Write(path, out))

	loaded, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, out.Approach, loaded.Approach)
	require.Equal(t, out.AggregateMetrics, loaded.AggregateMetrics)
	require.Equal(t, out.Results, loaded.Results)
	require.NotEmpty(t, loaded.RunID)
}

func TestWriteContractFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, Write(path, core.RunOutput{
		Approach: "agentic",
		Results: []core.QuestionResult{
			{QuestionID: "q1", Retrieved: []string{}},
		},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Contains(t, raw, "approach")
	require.Contains(t, raw, "aggregate_metrics")
	require.Contains(t, raw, "results")

	agg := raw["aggregate_metrics"].(map[string]any)
	for _, field := range []string{"avg_iou", "avg_token_usage", "avg_precision", "avg_recall"} {
		require.Contains(t, agg, field)
	}

	first := raw["results"].([]any)[0].(map[string]any)
	for _, field := range []string{"question_id", "question", "type", "ground_truth", "retrieved", "metrics"} {
		require.Contains(t, first, field)
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestReadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := Read(path)
	require.Error(t, err)
}
