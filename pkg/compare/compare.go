// Package compare computes the structural comparison between two evaluation
// runs over the same question corpus.
package compare

import (
	"fmt"
	"sort"

	"ragbench/pkg/core"
)

// Summary is the derived comparison between a baseline run (vector RAG) and
// a candidate run (agentic search). The JSON field names mirror the archived
// summary contract.
type Summary struct {
	Experiment          Experiment               `json:"experiment"`
	AggregateComparison AggregateComparison      `json:"aggregate_comparison"`
	ByQuestionType      map[string]TypeBreakdown `json:"by_question_type"`
	Deltas              []QuestionDelta          `json:"deltas"`
}

// Experiment records what was compared.
type Experiment struct {
	TotalQuestions int    `json:"total_questions"`
	RAGModel       string `json:"rag_model"`
	AgenticTool    string `json:"agentic_tool"`
}

// AggregateComparison pairs both aggregates with the relative improvements.
type AggregateComparison struct {
	RAG          core.AggregateMetrics `json:"rag"`
	Agentic      core.AggregateMetrics `json:"agentic"`
	Improvements Improvements          `json:"improvements"`
}

// Improvements holds relative improvement percentages of the candidate over
// the baseline. Token usage inverts the sign convention: a reduction is the
// desirable direction, so a lower candidate figure reports positive.
type Improvements struct {
	IoUImprovementPct       float64 `json:"iou_improvement_pct"`
	TokenReductionPct       float64 `json:"token_reduction_pct"`
	PrecisionImprovementPct float64 `json:"precision_improvement_pct"`
	RecallImprovementPct    float64 `json:"recall_improvement_pct"`
}

// TypeBreakdown is the per-question-type partition of both runs.
type TypeBreakdown struct {
	Count            int     `json:"count"`
	RAGAvgIoU        float64 `json:"rag_avg_iou"`
	AgenticAvgIoU    float64 `json:"agentic_avg_iou"`
	RAGAvgTokens     float64 `json:"rag_avg_tokens"`
	AgenticAvgTokens float64 `json:"agentic_avg_tokens"`
}

// QuestionDelta is the per-question IoU difference, in corpus order.
type QuestionDelta struct {
	QuestionID string  `json:"question_id"`
	Question   string  `json:"question"`
	RAGIoU     float64 `json:"rag_iou"`
	AgenticIoU float64 `json:"agentic_iou"`
	IoUDelta   float64 `json:"iou_delta"`
}

// Compare builds the summary for two runs. Results are matched by question
// identifier rather than raw position, with an explicit error on any missing
// or mismatched identifier: silently comparing misaligned results would
// produce meaningless deltas.
func Compare(baseline, candidate core.RunOutput) (*Summary, error) {
	if len(baseline.Results) != len(candidate.Results) {
		return nil, fmt.Errorf("compare: result count mismatch: baseline has %d, candidate has %d",
			len(baseline.Results), len(candidate.Results))
	}
	if len(baseline.Results) == 0 {
		return nil, fmt.Errorf("compare: no results to compare")
	}

	byID := make(map[string]core.QuestionResult, len(candidate.Results))
	for _, r := range candidate.Results {
		if _, ok := byID[r.QuestionID]; ok {
			return nil, fmt.Errorf("compare: duplicate question id %q in candidate run", r.QuestionID)
		}
		byID[r.QuestionID] = r
	}

	summary := &Summary{
		Experiment: Experiment{
			TotalQuestions: len(baseline.Results),
			RAGModel:       baseline.Model,
			AgenticTool:    candidate.Tool,
		},
		AggregateComparison: AggregateComparison{
			RAG:          baseline.AggregateMetrics,
			Agentic:      candidate.AggregateMetrics,
			Improvements: improvements(baseline.AggregateMetrics, candidate.AggregateMetrics),
		},
		ByQuestionType: make(map[string]TypeBreakdown),
	}

	byType := make(map[string][2][]core.QuestionResult)
	seen := make(map[string]struct{}, len(baseline.Results))
	for _, base := range baseline.Results {
		if _, ok := seen[base.QuestionID]; ok {
			return nil, fmt.Errorf("compare: duplicate question id %q in baseline run", base.QuestionID)
		}
		seen[base.QuestionID] = struct{}{}

		cand, ok := byID[base.QuestionID]
		if !ok {
			return nil, fmt.Errorf("compare: question %q missing from candidate run", base.QuestionID)
		}
		if cand.Type != base.Type {
			return nil, fmt.Errorf("compare: question %q has type %q in baseline but %q in candidate",
				base.QuestionID, base.Type, cand.Type)
		}

		summary.Deltas = append(summary.Deltas, QuestionDelta{
			QuestionID: base.QuestionID,
			Question:   base.Question,
			RAGIoU:     base.Metrics.IoU,
			AgenticIoU: cand.Metrics.IoU,
			IoUDelta:   cand.Metrics.IoU - base.Metrics.IoU,
		})

		partition := byType[base.Type]
		partition[0] = append(partition[0], base)
		partition[1] = append(partition[1], cand)
		byType[base.Type] = partition
	}

	for qtype, partition := range byType {
		summary.ByQuestionType[qtype] = TypeBreakdown{
			Count:            len(partition[0]),
			RAGAvgIoU:        meanIoU(partition[0]),
			AgenticAvgIoU:    meanIoU(partition[1]),
			RAGAvgTokens:     meanTokens(partition[0]),
			AgenticAvgTokens: meanTokens(partition[1]),
		}
	}

	return summary, nil
}

// Best returns up to n deltas ranked by descending IoU improvement, ties
// kept in corpus order.
func (s *Summary) Best(n int) []QuestionDelta {
	return s.ranked(n, func(a, b QuestionDelta) bool { return a.IoUDelta > b.IoUDelta })
}

// Worst returns up to n deltas ranked by ascending IoU improvement, ties
// kept in corpus order.
func (s *Summary) Worst(n int) []QuestionDelta {
	return s.ranked(n, func(a, b QuestionDelta) bool { return a.IoUDelta < b.IoUDelta })
}

func (s *Summary) ranked(n int, less func(a, b QuestionDelta) bool) []QuestionDelta {
	deltas := make([]QuestionDelta, len(s.Deltas))
	copy(deltas, s.Deltas)
	sort.SliceStable(deltas, func(i, j int) bool { return less(deltas[i], deltas[j]) })
	if n > len(deltas) {
		n = len(deltas)
	}
	return deltas[:n]
}

// improvements computes relative percentage changes. A zero baseline metric
// reports 0 rather than an infinity.
func improvements(baseline, candidate core.AggregateMetrics) Improvements {
	return Improvements{
		IoUImprovementPct:       relative(baseline.AvgIoU, candidate.AvgIoU),
		TokenReductionPct:       reduction(baseline.AvgTokenUsage, candidate.AvgTokenUsage),
		PrecisionImprovementPct: relative(baseline.AvgPrecision, candidate.AvgPrecision),
		RecallImprovementPct:    relative(baseline.AvgRecall, candidate.AvgRecall),
	}
}

func relative(baseline, candidate float64) float64 {
	if baseline <= 0 {
		return 0
	}
	return (candidate - baseline) / baseline * 100
}

func reduction(baseline, candidate float64) float64 {
	if baseline <= 0 {
		return 0
	}
	return (baseline - candidate) / baseline * 100
}

func meanIoU(results []core.QuestionResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Metrics.IoU
	}
	return sum / float64(len(results))
}

func meanTokens(results []core.QuestionResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += float64(r.Metrics.TokenUsage)
	}
	return sum / float64(len(results))
}
