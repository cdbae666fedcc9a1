// Package retriever provides the retrieval methods under evaluation: the
// embedding-based vector search and the agentic query tool.
package retriever

import (
	"context"
	"fmt"

	"ragbench/pkg/core"
	"ragbench/pkg/embed"
	"ragbench/pkg/store"
)

// Vector retrieves files by embedding the question and running top-k
// similarity search against the indexed codebase. Its hits are structured,
// so path extraction is bypassed and the cost surface is the retrieved file
// contents.
type Vector struct {
	Embedder embed.Embedder
	Store    *store.Store
	TopK     int
}

func (v *Vector) Name() string {
	return "rag"
}

// ConfigKey distinguishes cache entries across embedding models and top-k.
func (v *Vector) ConfigKey() string {
	model := ""
	if v.Embedder != nil {
		model = v.Embedder.Name()
	}
	return fmt.Sprintf("%s|%d", model, v.TopK)
}

func (v *Vector) Retrieve(ctx context.Context, question string) (core.Retrieval, error) {
	embedding, err := v.Embedder.Embed(ctx, question)
	if err != nil {
		return core.Retrieval{}, fmt.Errorf("retriever: embed question: %w", err)
	}

	topK := v.TopK
	if topK <= 0 {
		topK = 10
	}
	hits, err := v.Store.Search(ctx, embedding, topK)
	if err != nil {
		return core.Retrieval{}, fmt.Errorf("retriever: search: %w", err)
	}
	return core.Retrieval{Hits: hits}, nil
}
