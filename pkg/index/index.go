// Package index collects source files from a codebase and loads them into
// the vector store.
package index

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"ragbench/pkg/embed"
	"ragbench/pkg/store"
)

// Only source and config files are indexed; everything else is noise for
// code retrieval.
var allowedExtensions = map[string]struct{}{
	".ts": {}, ".tsx": {}, ".js": {}, ".jsx": {}, ".mjs": {}, ".cjs": {},
	".json": {}, ".toml": {}, ".yaml": {}, ".yml": {},
	".sh": {},
}

var ignoredDirs = map[string]struct{}{
	"node_modules": {}, ".git": {}, "dist": {}, "build": {}, ".next": {},
	".cache": {}, "__pycache__": {}, "coverage": {}, ".vscode": {},
	".idea": {}, "qdrant_storage": {}, ".brv": {},
}

// File is a collected source file with its codebase-relative path.
type File struct {
	Path    string
	Content string
}

// Collect walks the codebase and returns every readable file whose extension
// is on the allowlist. Paths are relative with forward slashes, matching the
// corpus ground-truth spelling.
func Collect(root string) ([]File, error) {
	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, skip := ignoredDirs[d.Name()]; skip && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := allowedExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			// Unreadable files are skipped, not fatal.
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, File{
			Path:    filepath.ToSlash(rel),
			Content: string(content),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index: collect %s: %w", root, err)
	}
	return files, nil
}

// Indexer embeds collected files and upserts them into the store in small
// batches.
type Indexer struct {
	Embedder  embed.Embedder
	Store     *store.Store
	Limiter   embed.Limiter
	BatchSize int
	Logger    *zap.Logger
}

// Run indexes the codebase at root. A file that fails to embed is logged
// and skipped; the index proceeds with the rest. Returns the number of files
// indexed.
func (ix *Indexer) Run(ctx context.Context, root string) (int, error) {
	logger := ix.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	batchSize := ix.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	files, err := Collect(root)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("index: no files to index under %s", root)
	}
	logger.Info("collected code files", zap.Int("count", len(files)), zap.String("root", root))

	if err := ix.Store.Reset(ctx); err != nil {
		return 0, err
	}

	indexed := 0
	batch := make([]store.CodeFile, 0, batchSize)
	for _, file := range files {
		if ix.Limiter != nil {
			if err := ix.Limiter.Wait(ctx); err != nil {
				return indexed, err
			}
		}

		embedding, err := ix.Embedder.Embed(ctx, file.Content)
		if err != nil {
			if ctx.Err() != nil {
				return indexed, ctx.Err()
			}
			logger.Warn("skipping file that failed to embed",
				zap.String("path", file.Path),
				zap.Error(err),
			)
			continue
		}

		batch = append(batch, store.CodeFile{
			Path:      file.Path,
			Content:   file.Content,
			Embedding: embedding,
		})
		if len(batch) >= batchSize {
			if err := ix.Store.UpsertFiles(ctx, batch); err != nil {
				return indexed, err
			}
			indexed += len(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := ix.Store.UpsertFiles(ctx, batch); err != nil {
			return indexed, err
		}
		indexed += len(batch)
	}

	logger.Info("indexing complete", zap.Int("indexed", indexed))
	return indexed, nil
}
