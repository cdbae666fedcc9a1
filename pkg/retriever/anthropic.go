package retriever

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"ragbench/pkg/core"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// Anthropic is an agentic querier backed by the Anthropic messages API
// instead of a local CLI. It answers under the same FILE: listing contract,
// so downstream extraction and scoring are identical to Tool's.
type Anthropic struct {
	Client     anthropic.Client
	Model      string
	MaxFiles   int
	MaxTokens  int
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

// NewAnthropicFromEnv builds a querier from ANTHROPIC_API_KEY.
func NewAnthropicFromEnv(modelName string, maxFiles int) (*Anthropic, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, errors.New("retriever: ANTHROPIC_API_KEY is required")
	}
	if modelName == "" {
		modelName = defaultAnthropicModel
	}
	return &Anthropic{
		Client:     anthropic.NewClient(option.WithAPIKey(apiKey)),
		Model:      modelName,
		MaxFiles:   maxFiles,
		MaxTokens:  1024,
		Timeout:    30 * time.Second,
		MaxRetries: 2,
		Backoff:    500 * time.Millisecond,
	}, nil
}

func (a *Anthropic) Name() string {
	return "agentic"
}

// ConfigKey distinguishes cache entries across models and prompt settings.
func (a *Anthropic) ConfigKey() string {
	return fmt.Sprintf("%s|%d|%d", a.Model, a.MaxFiles, a.MaxTokens)
}

func (a *Anthropic) Retrieve(ctx context.Context, question string) (core.Retrieval, error) {
	modelName := a.Model
	if modelName == "" {
		modelName = defaultAnthropicModel
	}
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxRetries := a.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := a.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	maxTokens := a.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelName),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(QueryPrompt(question, a.MaxFiles))),
		},
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		message, err := a.Client.Messages.New(attemptCtx, params)
		cancel()
		if err == nil {
			return core.Retrieval{Raw: messageText(message.Content)}, nil
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return core.Retrieval{}, err
		}
		lastErr = err
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return core.Retrieval{}, ctx.Err()
			case <-time.After(backoff * time.Duration(attempt+1)):
			}
		}
	}

	return core.Retrieval{}, fmt.Errorf("retriever: anthropic query failed after retries: %w", lastErr)
}

func messageText(blocks []anthropic.ContentBlockUnion) string {
	var builder strings.Builder
	for _, block := range blocks {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}
	return builder.String()
}
