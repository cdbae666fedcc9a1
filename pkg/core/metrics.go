package core

// Score computes the agreement metrics between a ground-truth set and an
// ordered candidate sequence. Token usage is supplied by the caller because
// the cost surface differs per method: the agentic method counts the full
// response text, the vector method counts the concatenated retrieved file
// contents.
//
// All divisions resolve to 0 rather than erroring: IoU of two empty sets is
// defined as 0, precision of an empty candidate list is 0, recall against an
// empty ground truth is 0.
func Score(groundTruth []string, retrieved []string, tokenUsage int) Metrics {
	truth := toSet(groundTruth)
	candidates := toSet(retrieved)

	intersection := 0
	for path := range candidates {
		if _, ok := truth[path]; ok {
			intersection++
		}
	}
	union := len(truth) + len(candidates) - intersection

	m := Metrics{TokenUsage: tokenUsage}
	if union > 0 {
		m.IoU = float64(intersection) / float64(union)
	}
	if len(candidates) > 0 {
		m.Precision = float64(intersection) / float64(len(candidates))
	}
	if len(truth) > 0 {
		m.Recall = float64(intersection) / float64(len(truth))
	}
	return m
}

// Aggregate computes the arithmetic mean of each metric over a complete
// result list. An empty list yields all-zero aggregates. Failed questions
// carry zero metrics and are averaged in as real zeros: a missing answer is
// a quality failure, not an excluded data point.
func Aggregate(results []QuestionResult) AggregateMetrics {
	if len(results) == 0 {
		return AggregateMetrics{}
	}

	var agg AggregateMetrics
	for _, r := range results {
		agg.AvgIoU += r.Metrics.IoU
		agg.AvgTokenUsage += float64(r.Metrics.TokenUsage)
		agg.AvgPrecision += r.Metrics.Precision
		agg.AvgRecall += r.Metrics.Recall
	}
	n := float64(len(results))
	agg.AvgIoU /= n
	agg.AvgTokenUsage /= n
	agg.AvgPrecision /= n
	agg.AvgRecall /= n
	return agg
}

func toSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}
