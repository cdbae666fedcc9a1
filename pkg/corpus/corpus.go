// Package corpus loads and validates the question corpus.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ragbench/pkg/core"
	"ragbench/pkg/extract"
)

type corpusFile struct {
	Questions []core.Question `json:"questions"`
}

// Load reads a questions file and validates every entry before any
// processing begins. A malformed question is a configuration error and is
// fatal: silently defaulting a missing field would corrupt every downstream
// metric. Ground-truth paths are normalized on load so they can never
// mismatch candidates on separator spelling.
func Load(path string) ([]core.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", filepath.Base(path), err)
	}

	var file corpusFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("corpus: parse %s: %w", filepath.Base(path), err)
	}
	if len(file.Questions) == 0 {
		return nil, fmt.Errorf("corpus: %s contains no questions", filepath.Base(path))
	}

	seen := make(map[string]struct{}, len(file.Questions))
	for i := range file.Questions {
		q := &file.Questions[i]
		if err := validate(i, q); err != nil {
			return nil, err
		}
		if _, ok := seen[q.ID]; ok {
			return nil, fmt.Errorf("corpus: duplicate question id %q", q.ID)
		}
		seen[q.ID] = struct{}{}

		for j, path := range q.GroundTruth {
			q.GroundTruth[j] = extract.Normalize(path)
		}
	}

	return file.Questions, nil
}

func validate(index int, q *core.Question) error {
	switch {
	case q.ID == "":
		return fmt.Errorf("corpus: question %d is missing an id", index)
	case q.Text == "":
		return fmt.Errorf("corpus: question %q is missing its text", q.ID)
	case q.Type == "":
		return fmt.Errorf("corpus: question %q is missing its type", q.ID)
	case len(q.GroundTruth) == 0:
		return fmt.Errorf("corpus: question %q has empty ground truth", q.ID)
	}
	return nil
}
