// Package extract parses free-form retrieval-tool output into a normalized,
// deduplicated list of candidate file paths.
package extract

import (
	"regexp"
	"strings"
)

// Strategy is one extraction attempt over the raw text. Strategies are pure
// and order-independent internally; the cascade gives them priority.
type Strategy func(raw string) []string

var (
	markerPattern   = regexp.MustCompile(`(?m)^FILE:\s*(.+)$`)
	codeSpanPattern = regexp.MustCompile("`([^`]+\\.[a-zA-Z]{2,4})`")
	defaultRoots    = []string{"packages", "scripts", "docs", "integration-tests", "schemas"}
	defaultExcludes = []string{".brv/"}
	defaultMaxFiles = 10
)

// Extractor turns raw retrieval output into candidate paths using a cascade
// of strategies, stopping at the first one that yields any match. The
// explicit FILE: marker is always preferred over scraping, even when a later
// strategy would find more paths: the marker is the contract requested of
// the upstream tool.
type Extractor struct {
	strategies []Strategy
	excludes   []string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSourceRoots sets the directory names recognized by the structural
// path-pattern fallback.
func WithSourceRoots(roots ...string) Option {
	return func(e *Extractor) {
		e.strategies[1] = structuralStrategy(roots)
	}
}

// WithExcludePrefixes sets path prefixes that are never treated as source
// files, regardless of which strategy matched them.
func WithExcludePrefixes(prefixes ...string) Option {
	return func(e *Extractor) {
		e.excludes = prefixes
	}
}

// New builds an Extractor with the default cascade: FILE: markers, then
// structural path patterns, then backticked code spans.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		strategies: []Strategy{
			markerStrategy,
			structuralStrategy(defaultRoots),
			codeSpanStrategy,
		},
		excludes: defaultExcludes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs the cascade and post-processes the matches: trim, separator
// normalization, exclusion filtering, first-seen deduplication, and the
// maxFiles cap. Empty input or no match yields an empty result, never an
// error; the caller scores it as zero recall.
func (e *Extractor) Extract(raw string, maxFiles int) []string {
	if maxFiles <= 0 {
		maxFiles = defaultMaxFiles
	}

	var matches []string
	for _, strategy := range e.strategies {
		matches = strategy(raw)
		if len(matches) > 0 {
			break
		}
	}

	seen := make(map[string]struct{}, len(matches))
	paths := []string{}
	for _, match := range matches {
		path := Normalize(match)
		if path == "" || e.excluded(path) {
			continue
		}
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
		if len(paths) == maxFiles {
			break
		}
	}
	return paths
}

// Normalize trims a path and rewrites backslash separators to forward
// slashes. It is idempotent: normalizing a normalized path is a no-op.
func Normalize(path string) string {
	return strings.ReplaceAll(strings.TrimSpace(path), `\`, "/")
}

func (e *Extractor) excluded(path string) bool {
	for _, prefix := range e.excludes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func markerStrategy(raw string) []string {
	var paths []string
	for _, groups := range markerPattern.FindAllStringSubmatch(raw, -1) {
		paths = append(paths, groups[1])
	}
	return paths
}

func structuralStrategy(roots []string) Strategy {
	pattern := regexp.MustCompile(
		`\b((?:` + strings.Join(escapeAll(roots), "|") + `)/[a-zA-Z0-9_\-/.]+\.[a-zA-Z]{2,4})\b`,
	)
	return func(raw string) []string {
		var paths []string
		for _, groups := range pattern.FindAllStringSubmatch(raw, -1) {
			paths = append(paths, groups[1])
		}
		return paths
	}
}

func codeSpanStrategy(raw string) []string {
	var paths []string
	for _, groups := range codeSpanPattern.FindAllStringSubmatch(raw, -1) {
		if strings.Contains(groups[1], "/") {
			paths = append(paths, groups[1])
		}
	}
	return paths
}

func escapeAll(roots []string) []string {
	escaped := make([]string, len(roots))
	for i, root := range roots {
		escaped[i] = regexp.QuoteMeta(root)
	}
	return escaped
}
