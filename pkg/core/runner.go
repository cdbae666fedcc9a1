package core

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Runner drives a question corpus through a single retrieval method.
//
// Questions are processed sequentially: each retrieval call already carries
// the concurrency-heavy work inside the external collaborator, and results
// must be complete before aggregation. A failing or empty retrieval is
// recorded as a zero-metric result and the run continues.
type Runner struct {
	Extractor Extractor
	Counter   TokenCounter
	MaxFiles  int
	Timeout   time.Duration
	Logger    *zap.Logger
}

// Run evaluates every question and returns the per-question results plus
// aggregate means. Given identical collaborator outputs the result is fully
// deterministic.
func (r *Runner) Run(ctx context.Context, questions []Question, method Method) (RunOutput, error) {
	if method == nil {
		return RunOutput{}, errors.New("runner: method is required")
	}
	if r.Counter == nil {
		return RunOutput{}, errors.New("runner: token counter is required")
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]QuestionResult, 0, len(questions))
	for _, q := range questions {
		if err := ctx.Err(); err != nil {
			return RunOutput{}, err
		}
		results = append(results, r.evaluate(ctx, logger, method, q))
	}

	return RunOutput{
		Approach:         method.Name(),
		Tokenizer:        r.Counter.Name(),
		MaxFiles:         r.MaxFiles,
		AggregateMetrics: Aggregate(results),
		Results:          results,
	}, nil
}

func (r *Runner) evaluate(ctx context.Context, logger *zap.Logger, method Method, q Question) QuestionResult {
	result := QuestionResult{
		QuestionID:  q.ID,
		Question:    q.Text,
		Type:        q.Type,
		GroundTruth: q.GroundTruth,
		Retrieved:   []string{},
	}

	queryCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	retrieval, err := method.Retrieve(queryCtx, q.Text)
	if err != nil || retrieval.Empty() {
		logger.Warn("retrieval failed, scoring as zero",
			zap.String("question_id", q.ID),
			zap.Error(err),
		)
		return result
	}

	var tokenUsage int
	if len(retrieval.Hits) > 0 {
		// Structured hits carry ranked paths directly; the cost surface is
		// the retrieved context.
		for _, hit := range retrieval.Hits {
			result.Retrieved = append(result.Retrieved, hit.Path)
			tokenUsage += r.Counter.Count(hit.Content)
		}
	} else {
		if r.Extractor == nil {
			logger.Warn("unstructured retrieval with no extractor configured",
				zap.String("question_id", q.ID),
			)
			return result
		}
		result.Retrieved = r.Extractor.Extract(retrieval.Raw, r.MaxFiles)
		tokenUsage = r.Counter.Count(retrieval.Raw)
	}

	result.Response = retrieval.Raw
	result.Metrics = Score(q.GroundTruth, result.Retrieved, tokenUsage)

	logger.Debug("question evaluated",
		zap.String("question_id", q.ID),
		zap.Float64("iou", result.Metrics.IoU),
		zap.Int("token_usage", result.Metrics.TokenUsage),
		zap.Int("retrieved", len(result.Retrieved)),
	)
	return result
}
