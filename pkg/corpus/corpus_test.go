package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCorpus(t, `{
		"questions": [
			{"id": "q1", "question": "Where is auth?", "type": "factual",
			 "ground_truth": ["packages/core/src/auth.ts", "packages\\core\\src\\oauth2.ts"]},
			{"id": "q2", "question": "Where is the CLI entry?", "type": "navigational",
			 "ground_truth": ["packages/cli/src/main.ts"]}
		]
	}`)

	questions, err := Load(path)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	require.Equal(t, "q1", questions[0].ID)
	// Ground truth is separator-normalized on load.
	require.Equal(t, []string{
		"packages/core/src/auth.ts",
		"packages/core/src/oauth2.ts",
	}, questions[0].GroundTruth)
}

func TestLoadMissingField(t *testing.T) {
	cases := map[string]string{
		"missing id": `{"questions": [
			{"question": "x", "type": "factual", "ground_truth": ["a.ts"]}]}`,
		"missing text": `{"questions": [
			{"id": "q1", "type": "factual", "ground_truth": ["a.ts"]}]}`,
		"missing type": `{"questions": [
			{"id": "q1", "question": "x", "ground_truth": ["a.ts"]}]}`,
		"empty ground truth": `{"questions": [
			{"id": "q1", "question": "x", "type": "factual", "ground_truth": []}]}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeCorpus(t, content))
			require.Error(t, err)
		})
	}
}

func TestLoadDuplicateID(t *testing.T) {
	path := writeCorpus(t, `{"questions": [
		{"id": "q1", "question": "x", "type": "factual", "ground_truth": ["a.ts"]},
		{"id": "q1", "question": "y", "type": "factual", "ground_truth": ["b.ts"]}]}`)

	_, err := Load(path)
	require.ErrorContains(t, err, "duplicate")
}

func TestLoadEmptyCorpus(t *testing.T) {
	_, err := Load(writeCorpus(t, `{"questions": []}`))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
