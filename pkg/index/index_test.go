package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "packages/core/src/main.ts", "export {}")
	writeFile(t, root, "scripts/build.sh", "#!/bin/sh")
	writeFile(t, root, "package.json", "{}")
	writeFile(t, root, "README.md", "# readme")                 // extension not allowed
	writeFile(t, root, "node_modules/dep/index.js", "var dep")  // ignored dir
	writeFile(t, root, ".brv/context-tree/meta.json", "{}")     // ignored dir
	writeFile(t, root, "dist/bundle.js", "var x")               // ignored dir

	files, err := Collect(root)
	require.NoError(t, err)

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	require.ElementsMatch(t, []string{
		"packages/core/src/main.ts",
		"scripts/build.sh",
		"package.json",
	}, paths)
}

func TestCollectEmptyRoot(t *testing.T) {
	files, err := Collect(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestCollectPathsUseForwardSlashes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "packages/a/b.ts", "x")

	files, err := Collect(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "packages/a/b.ts", files[0].Path)
}
