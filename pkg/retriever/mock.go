package retriever

import (
	"context"

	"ragbench/pkg/core"
)

// Mock returns a fixed retrieval, for smoke runs and tests.
type Mock struct {
	NameValue string
	Response  core.Retrieval
	Err       error
}

func (m Mock) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

func (m Mock) Retrieve(_ context.Context, _ string) (core.Retrieval, error) {
	if m.Err != nil {
		return core.Retrieval{}, m.Err
	}
	return m.Response, nil
}
