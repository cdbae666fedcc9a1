// Package embed generates question and file embeddings for the vector
// retrieval method.
package embed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"ragbench/pkg/tokens"
)

const (
	defaultModel = "text-embedding-3-small"

	// Dimension of text-embedding-3-small vectors; the store schema is
	// created with this width.
	Dimension = 1536

	// The embeddings endpoint rejects inputs above this many tokens.
	maxInputTokens = 8191
)

// Embedder produces a vector for a piece of text.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OpenAIEmbedder calls the OpenAI embeddings API.
type OpenAIEmbedder struct {
	Client     openai.Client
	Model      string
	Counter    tokens.Counter
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

// NewOpenAIEmbedderFromEnv builds an embedder from OPENAI_API_KEY.
func NewOpenAIEmbedderFromEnv(modelName string, counter tokens.Counter) (*OpenAIEmbedder, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("embed: OPENAI_API_KEY is required")
	}
	if modelName == "" {
		modelName = defaultModel
	}
	return &OpenAIEmbedder{
		Client:     openai.NewClient(option.WithAPIKey(apiKey)),
		Model:      modelName,
		Counter:    counter,
		Timeout:    30 * time.Second,
		MaxRetries: 2,
		Backoff:    500 * time.Millisecond,
	}, nil
}

func (e *OpenAIEmbedder) Name() string {
	if e.Model == "" {
		return defaultModel
	}
	return e.Model
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxRetries := e.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := e.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	if e.Counter != nil {
		text = e.Counter.Truncate(text, maxInputTokens)
	}

	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
		Model: openai.EmbeddingModel(e.Name()),
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		resp, err := e.Client.Embeddings.New(attemptCtx, params)
		cancel()
		if err == nil {
			if len(resp.Data) == 0 {
				return nil, errors.New("embed: empty embedding response")
			}
			vector := make([]float32, len(resp.Data[0].Embedding))
			for i, v := range resp.Data[0].Embedding {
				vector[i] = float32(v)
			}
			return vector, nil
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		lastErr = err
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff * time.Duration(attempt+1)):
			}
		}
	}

	return nil, fmt.Errorf("embed: request failed after retries: %w", lastErr)
}
