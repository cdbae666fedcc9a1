package core

import "context"

// Method is a retrieval strategy under evaluation.
type Method interface {
	Name() string
	Retrieve(ctx context.Context, question string) (Retrieval, error)
}

// TokenCounter measures the token cost of a piece of text. Both methods in a
// comparison must use the same counter for the cost figures to be comparable.
type TokenCounter interface {
	Name() string
	Count(text string) int
}

// Extractor parses unstructured retrieval output into candidate file paths.
type Extractor interface {
	Extract(raw string, maxFiles int) []string
}
