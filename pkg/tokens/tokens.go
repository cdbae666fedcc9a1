// Package tokens provides token counters for cost measurement. Both methods
// in a comparison must share one counter, otherwise cost percentages are
// meaningless.
package tokens

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

// Counter extends the core contract with truncation, needed by the embedder
// to respect the embedding API input limit.
type Counter interface {
	Name() string
	Count(text string) int
	Truncate(text string, maxTokens int) string
}

// Tiktoken counts tokens with the cl100k_base encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the cl100k_base encoding. Loading can fail on first use
// when the encoding files cannot be fetched; callers should fall back to
// Heuristic and flag the run accordingly.
func NewTiktoken() (Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return Tiktoken{}, fmt.Errorf("tokens: load %s encoding: %w", encodingName, err)
	}
	return Tiktoken{enc: enc}, nil
}

func (t Tiktoken) Name() string {
	return encodingName
}

func (t Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

func (t Tiktoken) Truncate(text string, maxTokens int) string {
	ids := t.enc.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return text
	}
	return t.enc.Decode(ids[:maxTokens])
}

// Heuristic approximates four characters per token. Results produced with it
// carry "heuristic" in the persisted tokenizer field so they are never
// silently mixed with tiktoken-counted runs.
type Heuristic struct{}

func (Heuristic) Name() string {
	return "heuristic"
}

func (Heuristic) Count(text string) int {
	return len(text) / 4
}

func (Heuristic) Truncate(text string, maxTokens int) string {
	limit := maxTokens * 4
	if len(text) <= limit {
		return text
	}
	// Back off to a rune boundary so the cut never produces invalid UTF-8.
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
