package core

// Question is a single corpus entry with its expert-labeled ground truth.
type Question struct {
	ID          string   `json:"id"`
	Text        string   `json:"question"`
	Type        string   `json:"type"`
	GroundTruth []string `json:"ground_truth"`
}

// Metrics holds the per-question agreement and cost figures.
type Metrics struct {
	IoU        float64 `json:"iou"`
	TokenUsage int     `json:"token_usage"`
	Precision  float64 `json:"precision"`
	Recall     float64 `json:"recall"`
}

// QuestionResult captures the outcome for one question under one method.
type QuestionResult struct {
	QuestionID  string   `json:"question_id"`
	Question    string   `json:"question"`
	Type        string   `json:"type"`
	GroundTruth []string `json:"ground_truth"`
	Retrieved   []string `json:"retrieved"`
	Response    string   `json:"response,omitempty"`
	Metrics     Metrics  `json:"metrics"`
}

// AggregateMetrics is the arithmetic mean of each metric across a run.
// Field names form the durable contract with archived result files.
type AggregateMetrics struct {
	AvgIoU        float64 `json:"avg_iou"`
	AvgTokenUsage float64 `json:"avg_token_usage"`
	AvgPrecision  float64 `json:"avg_precision"`
	AvgRecall     float64 `json:"avg_recall"`
}

// RunOutput is the persisted output of one evaluation run.
type RunOutput struct {
	Approach         string           `json:"approach"`
	RunID            string           `json:"run_id,omitempty"`
	Tool             string           `json:"tool,omitempty"`
	Model            string           `json:"model,omitempty"`
	TopK             int              `json:"top_k,omitempty"`
	MaxFiles         int              `json:"max_files,omitempty"`
	Tokenizer        string           `json:"tokenizer,omitempty"`
	AggregateMetrics AggregateMetrics `json:"aggregate_metrics"`
	Results          []QuestionResult `json:"results"`
}

// FileHit is one ranked result from a structured retrieval method.
type FileHit struct {
	Path    string  `json:"path"`
	Score   float64 `json:"score"`
	Content string  `json:"content,omitempty"`
}

// Retrieval is the raw output of a retrieval method for one question.
// Structured methods fill Hits and bypass path extraction; unstructured
// methods fill Raw, which the extractor parses.
type Retrieval struct {
	Raw  string    `json:"raw,omitempty"`
	Hits []FileHit `json:"hits,omitempty"`
}

// Empty reports whether the method produced nothing usable. The runner
// scores an empty retrieval as a zero-metric result, not an error.
func (r Retrieval) Empty() bool {
	return r.Raw == "" && len(r.Hits) == 0
}
