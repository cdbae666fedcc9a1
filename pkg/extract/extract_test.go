package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractMarkers(t *testing.T) {
	raw := "OAuth2 is handled in the code_assist module.\n\n" +
		"FILE: packages/core/src/code_assist/oauth2.ts\n" +
		"FILE: packages/core/src/config/config.ts\n"

	paths := New().Extract(raw, 10)
	require.Equal(t, []string{
		"packages/core/src/code_assist/oauth2.ts",
		"packages/core/src/config/config.ts",
	}, paths)
}

func TestExtractMarkerPriority(t *testing.T) {
	// Bare structural paths in the prose must be ignored once any FILE:
	// marker is present.
	raw := "See packages/cli/src/app.tsx for the entry point.\n" +
		"FILE: packages/core/src/index.ts\n"

	paths := New().Extract(raw, 10)
	require.Equal(t, []string{"packages/core/src/index.ts"}, paths)
}

func TestExtractStructuralFallback(t *testing.T) {
	raw := "The build is driven by scripts/build.js and packages/core/src/main.ts."

	paths := New().Extract(raw, 10)
	require.Equal(t, []string{"scripts/build.js", "packages/core/src/main.ts"}, paths)
}

func TestExtractCodeSpanFallback(t *testing.T) {
	raw := "Look at `src/utils/helpers.ts` and `README.md` for details."

	paths := New().Extract(raw, 10)
	// Spans without a separator are not paths.
	require.Equal(t, []string{"src/utils/helpers.ts"}, paths)
}

func TestExtractDeduplicatesSeparatorVariants(t *testing.T) {
	raw := "FILE: packages/a/b.ts\n" +
		"FILE: packages\\a\\b.ts\n" +
		"FILE: packages/a/c.ts\n"

	paths := New().Extract(raw, 10)
	require.Equal(t, []string{"packages/a/b.ts", "packages/a/c.ts"}, paths)
}

func TestExtractExclusions(t *testing.T) {
	raw := "FILE: .brv/context-tree/meta.json\n" +
		"FILE: packages/core/src/main.ts\n"

	paths := New().Extract(raw, 10)
	require.Equal(t, []string{"packages/core/src/main.ts"}, paths)
}

func TestExtractMaxFilesCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "FILE: packages/core/src/file%02d.ts\n", i)
	}

	paths := New().Extract(b.String(), 5)
	require.Len(t, paths, 5)
	require.Equal(t, "packages/core/src/file00.ts", paths[0])
	require.Equal(t, "packages/core/src/file04.ts", paths[4])
}

func TestExtractEmptyInput(t *testing.T) {
	require.Empty(t, New().Extract("", 10))
	require.Empty(t, New().Extract("no paths anywhere here", 10))
}

func TestExtractIdempotent(t *testing.T) {
	raw := "FILE: packages/core/src/a.ts\nFILE: scripts/b.js\n"
	e := New()

	first := e.Extract(raw, 10)
	again := e.Extract("FILE: "+strings.Join(first, "\nFILE: ")+"\n", 10)
	require.Equal(t, first, again)
}

func TestNormalizeIdempotent(t *testing.T) {
	require.Equal(t, "a/b.ts", Normalize(` a\b.ts `))
	require.Equal(t, "a/b.ts", Normalize(Normalize(` a\b.ts `)))
}

func TestExtractCustomRootsAndExcludes(t *testing.T) {
	e := New(
		WithSourceRoots("internal", "cmd"),
		WithExcludePrefixes("internal/generated/"),
	)
	raw := "Entry point is cmd/app/main.go, helpers in internal/util/strings.go, " +
		"plus the generated internal/generated/api.go."

	paths := e.Extract(raw, 10)
	require.Equal(t, []string{"cmd/app/main.go", "internal/util/strings.go"}, paths)
}
