package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"ragbench/pkg/compare"
)

// ComparisonMarkdown renders the full markdown comparison report: overall
// table, key findings, per-type breakdowns, and the best/worst questions.
func ComparisonMarkdown(w io.Writer, summary *compare.Summary) error {
	agg := summary.AggregateComparison
	imp := agg.Improvements

	fmt.Fprintf(w, "# RAG vs Agentic Search: Experimental Results\n\n")
	fmt.Fprintf(w, "## Experiment Configuration\n\n")
	fmt.Fprintf(w, "- **Total Questions**: %d\n", summary.Experiment.TotalQuestions)
	fmt.Fprintf(w, "- **RAG Model**: %s\n", orNA(summary.Experiment.RAGModel))
	fmt.Fprintf(w, "- **Agentic Tool**: %s\n\n", orNA(summary.Experiment.AgenticTool))

	fmt.Fprintf(w, "## Overall Performance Comparison\n\n")
	fmt.Fprintf(w, "| Metric | RAG | Agentic Search | Improvement |\n")
	fmt.Fprintf(w, "|--------|-----|----------------|-------------|\n")
	fmt.Fprintf(w, "| **IoU Score** | %.3f | %.3f | %+.1f%% |\n",
		agg.RAG.AvgIoU, agg.Agentic.AvgIoU, imp.IoUImprovementPct)
	fmt.Fprintf(w, "| **Token Usage** | %.0f | %.0f | %+.1f%% |\n",
		agg.RAG.AvgTokenUsage, agg.Agentic.AvgTokenUsage, imp.TokenReductionPct)
	fmt.Fprintf(w, "| **Precision** | %.3f | %.3f | %+.1f%% |\n",
		agg.RAG.AvgPrecision, agg.Agentic.AvgPrecision, imp.PrecisionImprovementPct)
	fmt.Fprintf(w, "| **Recall** | %.3f | %.3f | %+.1f%% |\n\n",
		agg.RAG.AvgRecall, agg.Agentic.AvgRecall, imp.RecallImprovementPct)

	fmt.Fprintf(w, "Token cost surfaces differ per method: the RAG figure counts\n")
	fmt.Fprintf(w, "retrieved file contents while the agentic figure counts the full\n")
	fmt.Fprintf(w, "response text. Percentages compare those different surfaces.\n\n")

	fmt.Fprintf(w, "## Key Findings\n\n")
	writeFinding(w, "Retrieval Quality (IoU Score)", agg.RAG.AvgIoU, agg.Agentic.AvgIoU,
		"Agentic search is more accurate", "RAG is more accurate", imp.IoUImprovementPct)
	writeFinding(w, "Precision", agg.RAG.AvgPrecision, agg.Agentic.AvgPrecision,
		"Agentic search has higher precision", "RAG has higher precision", imp.PrecisionImprovementPct)
	writeFinding(w, "Recall", agg.RAG.AvgRecall, agg.Agentic.AvgRecall,
		"Agentic search has higher recall", "RAG has higher recall", imp.RecallImprovementPct)

	fmt.Fprintf(w, "## Performance by Question Type\n\n")
	for _, qtype := range sortedTypes(summary) {
		breakdown := summary.ByQuestionType[qtype]
		fmt.Fprintf(w, "### %s Questions (%d questions)\n\n", capitalize(qtype), breakdown.Count)
		fmt.Fprintf(w, "| Metric | RAG | Agentic Search |\n|--------|-----|----------------|\n")
		fmt.Fprintf(w, "| IoU Score | %.3f | %.3f |\n", breakdown.RAGAvgIoU, breakdown.AgenticAvgIoU)
		fmt.Fprintf(w, "| Token Usage | %.0f | %.0f |\n\n", breakdown.RAGAvgTokens, breakdown.AgenticAvgTokens)
	}

	fmt.Fprintf(w, "## Detailed Results\n\n")
	fmt.Fprintf(w, "### Top 5 Best Performing Questions (Agentic Search)\n\n")
	writeDeltas(w, summary.Best(5), "Improvement")
	fmt.Fprintf(w, "### Top 5 Worst Performing Questions (Agentic Search)\n\n")
	writeDeltas(w, summary.Worst(5), "Difference")

	return writeConclusion(w, summary)
}

func writeFinding(w io.Writer, title string, rag, agentic float64, agenticBetter, ragBetter string, pct float64) {
	verdict := ragBetter
	if agentic > rag {
		verdict = agenticBetter
	}
	fmt.Fprintf(w, "### %s\n\n- **RAG**: %.3f\n- **Agentic Search**: %.3f\n- **Result**: %s by %.1f%%\n\n",
		title, rag, agentic, verdict, abs(pct))
}

func writeDeltas(w io.Writer, deltas []compare.QuestionDelta, label string) {
	for _, d := range deltas {
		fmt.Fprintf(w, "**%s**: %s\n- RAG IoU: %.3f\n- Agentic IoU: %.3f\n- %s: %+.3f\n\n",
			d.QuestionID, d.Question, d.RAGIoU, d.AgenticIoU, label, d.IoUDelta)
	}
}

func writeConclusion(w io.Writer, summary *compare.Summary) error {
	agg := summary.AggregateComparison
	imp := agg.Improvements

	fmt.Fprintf(w, "## Conclusion\n\nBased on this experiment with %d questions:\n\n",
		summary.Experiment.TotalQuestions)

	var err error
	switch {
	case agg.Agentic.AvgIoU > agg.RAG.AvgIoU && imp.TokenReductionPct > 0:
		_, err = fmt.Fprintf(w, "**Agentic search outperforms RAG on both accuracy and efficiency:**\n"+
			"- %.1f%% better retrieval accuracy (IoU)\n"+
			"- %.1f%% reduction in token usage\n",
			abs(imp.IoUImprovementPct), abs(imp.TokenReductionPct))
	case agg.Agentic.AvgIoU > agg.RAG.AvgIoU:
		_, err = fmt.Fprintf(w, "**Agentic search shows better accuracy but uses more tokens:**\n"+
			"- %.1f%% better retrieval accuracy (IoU)\n"+
			"- However, uses %.1f%% more tokens\n",
			abs(imp.IoUImprovementPct), abs(imp.TokenReductionPct))
	default:
		_, err = fmt.Fprintf(w, "**Results show mixed performance:**\n"+
			"- IoU difference: %+.1f%%\n"+
			"- Token usage difference: %+.1f%%\n",
			imp.IoUImprovementPct, imp.TokenReductionPct)
	}
	return err
}

func sortedTypes(summary *compare.Summary) []string {
	types := make([]string, 0, len(summary.ByQuestionType))
	for qtype := range summary.ByQuestionType {
		types = append(types, qtype)
	}
	sort.Strings(types)
	return types
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
