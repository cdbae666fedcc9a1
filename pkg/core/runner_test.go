package core_test

import (
	"context"
	"errors"
	"testing"

	"ragbench/pkg/core"
	"ragbench/pkg/extract"
	"ragbench/pkg/tokens"

	"github.com/stretchr/testify/require"
)

type scriptedMethod struct {
	name      string
	responses map[string]core.Retrieval
	errs      map[string]error
}

func (s scriptedMethod) Name() string {
	return s.name
}

func (s scriptedMethod) Retrieve(_ context.Context, question string) (core.Retrieval, error) {
	if err, ok := s.errs[question]; ok {
		return core.Retrieval{}, err
	}
	return s.responses[question], nil
}

func newRunner() *core.Runner {
	return &core.Runner{
		Extractor: extract.New(),
		Counter:   tokens.Heuristic{},
		MaxFiles:  10,
	}
}

func TestRunnerUnstructured(t *testing.T) {
	questions := []core.Question{
		{ID: "q1", Text: "where is auth?", Type: "factual", GroundTruth: []string{"a.ts", "b.ts"}},
	}
	method := scriptedMethod{
		name: "agentic",
		responses: map[string]core.Retrieval{
			"where is auth?": {Raw: "Auth lives here.\nFILE: b.ts\nFILE: c.ts\n"},
		},
	}

	out, err := newRunner().Run(context.Background(), questions, method)
	require.NoError(t, err)
	require.Equal(t, "agentic", out.Approach)
	require.Len(t, out.Results, 1)

	result := out.Results[0]
	require.Equal(t, []string{"b.ts", "c.ts"}, result.Retrieved)
	require.InDelta(t, 1.0/3.0, result.Metrics.IoU, 1e-9)
	require.InDelta(t, 0.5, result.Metrics.Precision, 1e-9)
	require.InDelta(t, 0.5, result.Metrics.Recall, 1e-9)
	require.NotEmpty(t, result.Response)
}

func TestRunnerStructuredHitsBypassExtraction(t *testing.T) {
	questions := []core.Question{
		{ID: "q1", Text: "q", Type: "factual", GroundTruth: []string{"a.ts"}},
	}
	method := scriptedMethod{
		name: "rag",
		responses: map[string]core.Retrieval{
			"q": {Hits: []core.FileHit{
				{Path: "a.ts", Score: 0.9, Content: "12345678"},
				{Path: "b.ts", Score: 0.8, Content: "1234"},
			}},
		},
	}

	out, err := newRunner().Run(context.Background(), questions, method)
	require.NoError(t, err)

	result := out.Results[0]
	require.Equal(t, []string{"a.ts", "b.ts"}, result.Retrieved)
	// Cost is the retrieved context, counted per file.
	require.Equal(t, 8/4+4/4, result.Metrics.TokenUsage)
	require.InDelta(t, 0.5, result.Metrics.IoU, 1e-9)
}

func TestRunnerFailureScoresZeroAndContinues(t *testing.T) {
	questions := []core.Question{
		{ID: "q1", Text: "fails", Type: "factual", GroundTruth: []string{"a.ts"}},
		{ID: "q2", Text: "works", Type: "factual", GroundTruth: []string{"a.ts"}},
	}
	method := scriptedMethod{
		name: "agentic",
		errs: map[string]error{"fails": errors.New("tool timed out")},
		responses: map[string]core.Retrieval{
			"works": {Raw: "FILE: a.ts\n"},
		},
	}

	out, err := newRunner().Run(context.Background(), questions, method)
	require.NoError(t, err)
	require.Len(t, out.Results, 2)

	failed := out.Results[0]
	require.Equal(t, core.Metrics{}, failed.Metrics)
	require.Empty(t, failed.Retrieved)
	require.Empty(t, failed.Response)

	// The failure depresses the average instead of being excluded.
	require.InDelta(t, 0.5, out.AggregateMetrics.AvgIoU, 1e-9)
}

func TestRunnerEmptyRetrievalScoresZero(t *testing.T) {
	questions := []core.Question{
		{ID: "q1", Text: "q", Type: "factual", GroundTruth: []string{"a.ts"}},
	}
	method := scriptedMethod{
		name:      "agentic",
		responses: map[string]core.Retrieval{"q": {}},
	}

	out, err := newRunner().Run(context.Background(), questions, method)
	require.NoError(t, err)
	require.Equal(t, core.Metrics{}, out.Results[0].Metrics)
}

func TestRunnerEmptyCorpus(t *testing.T) {
	out, err := newRunner().Run(context.Background(), nil, scriptedMethod{name: "agentic"})
	require.NoError(t, err)
	require.Empty(t, out.Results)
	require.Equal(t, core.AggregateMetrics{}, out.AggregateMetrics)
}

func TestRunnerAggregateMean(t *testing.T) {
	questions := []core.Question{
		{ID: "q1", Text: "q1", Type: "factual", GroundTruth: []string{"a.ts"}},
		{ID: "q2", Text: "q2", Type: "factual", GroundTruth: []string{"a.ts", "c.ts"}},
		{ID: "q3", Text: "q3", Type: "factual", GroundTruth: []string{"a.ts"}},
	}
	method := scriptedMethod{
		name: "agentic",
		responses: map[string]core.Retrieval{
			"q1": {Raw: "FILE: a.ts\n"},                                       // IoU 1.0
			"q2": {Raw: "FILE: a.ts\nFILE: b.ts\nFILE: c.ts\nFILE: d.ts\n"},   // IoU 0.5
			"q3": {Raw: "FILE: x.ts\n"},                                       // IoU 0.0
		},
	}

	out, err := newRunner().Run(context.Background(), questions, method)
	require.NoError(t, err)
	require.InDelta(t, (1.0+0.5+0.0)/3.0, out.AggregateMetrics.AvgIoU, 1e-9)
}
