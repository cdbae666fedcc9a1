// Package resultlog persists evaluation runs as JSON result files.
//
// The file layout (approach, aggregate_metrics with avg_iou /
// avg_token_usage / avg_precision / avg_recall, and the results array) is
// the durable contract between evaluation runs and later comparisons;
// archived files from older runs must keep loading.
package resultlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ragbench/pkg/core"

	"github.com/google/uuid"
)

// Write persists a run to path, creating parent directories as needed. The
// file is written to a temp sibling and renamed so a crash mid-write never
// leaves a truncated result file. A missing RunID is stamped before writing.
func Write(path string, out core.RunOutput) error {
	if out.RunID == "" {
		out.RunID = uuid.NewString()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("resultlog: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".results-*.json")
	if err != nil {
		return fmt.Errorf("resultlog: temp file: %w", err)
	}

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("resultlog: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("resultlog: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("resultlog: rename: %w", err)
	}
	return nil
}

// Read loads a persisted run.
func Read(path string) (core.RunOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.RunOutput{}, fmt.Errorf("resultlog: read %s: %w", path, err)
	}
	var out core.RunOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return core.RunOutput{}, fmt.Errorf("resultlog: parse %s: %w", path, err)
	}
	return out, nil
}
