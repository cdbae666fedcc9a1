package retriever

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"ragbench/pkg/core"
)

// Tool shells out to an agentic query CLI (for example `brv query`) running
// inside the codebase directory. Its output is unstructured text; the
// runner's extractor parses the FILE: lines the prompt demands.
type Tool struct {
	Command  string
	Args     []string
	Dir      string
	MaxFiles int
}

func (t *Tool) Name() string {
	return "agentic"
}

// ConfigKey distinguishes cache entries across tool argv, working directory,
// and file cap.
func (t *Tool) ConfigKey() string {
	parts := append([]string{t.Command}, t.Args...)
	parts = append(parts, t.Dir, fmt.Sprintf("%d", t.MaxFiles))
	return strings.Join(parts, "|")
}

func (t *Tool) Retrieve(ctx context.Context, question string) (core.Retrieval, error) {
	if t.Command == "" {
		return core.Retrieval{}, fmt.Errorf("retriever: tool command is required")
	}

	args := append(append([]string{}, t.Args...), QueryPrompt(question, t.MaxFiles))
	cmd := exec.CommandContext(ctx, t.Command, args...)
	cmd.Dir = t.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return core.Retrieval{}, fmt.Errorf("retriever: tool query timed out: %w", ctx.Err())
		}
		return core.Retrieval{}, fmt.Errorf("retriever: tool query failed: %w (%s)",
			err, strings.TrimSpace(stderr.String()))
	}
	return core.Retrieval{Raw: stdout.String()}, nil
}

// QueryPrompt wraps a question with the listing contract the extractor
// relies on: every relevant source file on its own line behind a FILE:
// prefix, tool metadata directories excluded.
func QueryPrompt(question string, maxFiles int) string {
	if maxFiles <= 0 {
		maxFiles = 10
	}
	return fmt.Sprintf(`%s

CRITICAL INSTRUCTIONS - YOU MUST FOLLOW THESE EXACTLY:

1. Answer the question using knowledge from the context tree
2. List ALL relevant SOURCE CODE file paths (up to %d files maximum)
3. ONLY include actual source code files (packages/, scripts/, schemas/, etc.)
4. NEVER include .brv/context-tree/ files - these are NOT source code
5. Format EVERY file path on a new line starting with "FILE:" prefix

REQUIRED FORMAT (copy this exactly):
FILE: packages/core/src/example.ts
FILE: packages/cli/src/components/App.tsx
FILE: scripts/build.js

DO NOT include .brv/ paths. Only list actual source code files.`, question, maxFiles)
}
